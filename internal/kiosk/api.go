package kiosk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"PunchPass/internal/model"
	"PunchPass/internal/model/dto"
)

const requestTimeout = 30 * time.Second

// Reply 服务端所有动作响应的并集。
// 各动作只会填自己的那几个字段，终端按 status 分流。
type Reply struct {
	Status       string          `json:"status"`
	Message      string          `json:"message,omitempty"`
	Time         string          `json:"time,omitempty"`
	CheckInTime  string          `json:"check_in_time,omitempty"`
	CheckOutTime string          `json:"check_out_time,omitempty"`
	UserData     *model.UserData `json:"userData,omitempty"`
}

// APIClient 打卡终端到服务端的通道。
// 网络错误、非 200 状态、坏 JSON 一律折叠成 error 形状的 Reply，
// 状态机只处理一种失败。
type APIClient struct {
	Endpoint string
	HTTP     *http.Client
}

func NewAPIClient(endpoint string) *APIClient {
	return &APIClient{
		Endpoint: endpoint,
		HTTP:     &http.Client{},
	}
}

// Do 发送一个考勤动作，带 30 秒超时。永不返回 Go error。
func (a *APIClient) Do(ctx context.Context, req *dto.AttendanceRequest) *Reply {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return errorReply("Failed to encode request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint, bytes.NewReader(body))
	if err != nil {
		return errorReply("Failed to build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.HTTP.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errorReply("Request timed out. Please try again.")
		}
		return errorReply("Network error. Please check your connection.")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorReply("Failed to read response")
	}

	var reply Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return errorReply("Unexpected response from server")
	}

	// 服务端失败时 body 里已经是 error 形状，原样透传；
	// 非 200 但 body 不是约定形状时兜一个底。
	if reply.Status == "" {
		if resp.StatusCode != http.StatusOK {
			return errorReply("Server error. Please try again later.")
		}
		return errorReply("Unexpected response from server")
	}

	return &reply
}

func errorReply(message string) *Reply {
	return &Reply{Status: "error", Message: message}
}
