package handler

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"

	"PunchPass/config"
	"PunchPass/internal/middleware"
	"PunchPass/storage/sheet"
)

const testQRCode = "f29cZb7Q6DuaMjYkTLV3nxR9KEqV2XoBslrHcwA8d1tZ5UeqgiWTvjNpLEsQ"

// newTestEngine 装配一个和线上同构的引擎：CORS + 单一考勤路由。
// 限流和追踪依赖外部组件，这里不挂。
func newTestEngine(t *testing.T, mock *sheet.Mock) *route.Engine {
	t.Helper()

	config.Cfg.SheetID = "test-sheet"
	config.Cfg.GoogleServiceAccount = "{}"
	config.Cfg.QRAuthCode = testQRCode
	config.Cfg.AttendanceTimezone = "UTC"
	sheet.SetClient(mock)

	h := server.Default(server.WithHandleMethodNotAllowed(true))
	h.Use(middleware.CORSMiddleware())
	h.POST("/api/log-attendance", LogAttendance)

	return h.Engine
}

func perform(t *testing.T, engine *route.Engine, method, body string) *ut.ResponseRecorder {
	t.Helper()

	var opts []ut.Header
	opts = append(opts, ut.Header{Key: "Content-Type", Value: "application/json"})

	return ut.PerformRequest(engine, method, "/api/log-attendance",
		&ut.Body{Body: strings.NewReader(body), Len: len(body)},
		opts...,
	)
}

func decodeBody(t *testing.T, w *ut.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Result().Body(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, w.Result().Body())
	}
	return body
}

func TestOptionsPreflight(t *testing.T) {
	engine := newTestEngine(t, sheet.NewMock(nil))

	w := perform(t, engine, "OPTIONS", "")
	resp := w.Result()

	if resp.StatusCode() != 200 {
		t.Fatalf("preflight must return 200, got %d", resp.StatusCode())
	}
	if got := string(resp.Header.Peek("Access-Control-Allow-Origin")); got == "" {
		t.Fatalf("preflight must carry CORS headers")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	engine := newTestEngine(t, sheet.NewMock(nil))

	w := perform(t, engine, "GET", "")
	if w.Result().StatusCode() != 405 {
		t.Fatalf("GET must return 405, got %d", w.Result().StatusCode())
	}
}

func TestMissingAction(t *testing.T) {
	engine := newTestEngine(t, sheet.NewMock(nil))

	w := perform(t, engine, "POST", `{}`)
	if w.Result().StatusCode() != 400 {
		t.Fatalf("expected 400, got %d", w.Result().StatusCode())
	}

	body := decodeBody(t, w)
	if body["status"] != "error" || body["message"] != "Missing action parameter" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestUnknownAction(t *testing.T) {
	engine := newTestEngine(t, sheet.NewMock(nil))

	w := perform(t, engine, "POST", `{"action":"frobnicate"}`)
	if w.Result().StatusCode() != 400 {
		t.Fatalf("expected 400, got %d", w.Result().StatusCode())
	}

	body := decodeBody(t, w)
	if body["status"] != "error" {
		t.Fatalf("failure body must have status error: %v", body)
	}
}

func TestMissingEmployeeID(t *testing.T) {
	engine := newTestEngine(t, sheet.NewMock(nil))

	for _, action := range []string{"check-in", "check-out", "status"} {
		w := perform(t, engine, "POST", `{"action":"`+action+`"}`)
		if w.Result().StatusCode() != 400 {
			t.Fatalf("%s without employeeId must return 400, got %d", action, w.Result().StatusCode())
		}

		body := decodeBody(t, w)
		if body["message"] != "Missing employeeId parameter" {
			t.Fatalf("%s: unexpected body: %v", action, body)
		}
	}
}

func TestConfigMissing(t *testing.T) {
	engine := newTestEngine(t, sheet.NewMock(nil))
	config.Cfg.SheetID = ""
	defer func() { config.Cfg.SheetID = "test-sheet" }()

	w := perform(t, engine, "POST", `{"action":"status","employeeId":"000001"}`)
	if w.Result().StatusCode() != 500 {
		t.Fatalf("missing config must return 500, got %d", w.Result().StatusCode())
	}

	body := decodeBody(t, w)
	if body["status"] != "error" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestValidateQROverHTTP(t *testing.T) {
	engine := newTestEngine(t, sheet.NewMock(nil))

	w := perform(t, engine, "POST", `{"action":"validate-qr","qrCode":"`+testQRCode+`"}`)
	if w.Result().StatusCode() != 200 {
		t.Fatalf("expected 200, got %d", w.Result().StatusCode())
	}
	if body := decodeBody(t, w); body["status"] != "valid" {
		t.Fatalf("expected valid, got %v", body)
	}

	// 错误的码同样是 200，valid/invalid 是业务结果不是失败
	w = perform(t, engine, "POST", `{"action":"validate-qr","qrCode":"wrong"}`)
	if w.Result().StatusCode() != 200 {
		t.Fatalf("invalid code must still be 200, got %d", w.Result().StatusCode())
	}
	if body := decodeBody(t, w); body["status"] != "invalid" {
		t.Fatalf("expected invalid, got %v", body)
	}
}

func TestRegisterAndStatusOverHTTP(t *testing.T) {
	mock := sheet.NewMock(nil)
	engine := newTestEngine(t, mock)

	w := perform(t, engine, "POST",
		`{"action":"register","fullName":"Alice Smith","mobile":"5551234567","department":"Engineering"}`)
	if w.Result().StatusCode() != 200 {
		t.Fatalf("register failed: %d %s", w.Result().StatusCode(), w.Result().Body())
	}

	body := decodeBody(t, w)
	if body["status"] != "success" {
		t.Fatalf("unexpected register body: %v", body)
	}
	userData, ok := body["userData"].(map[string]interface{})
	if !ok || userData["employeeId"] == "" {
		t.Fatalf("register must return userData with employeeId: %v", body)
	}

	id := userData["employeeId"].(string)
	w = perform(t, engine, "POST", `{"action":"status","employeeId":"`+id+`"}`)
	if w.Result().StatusCode() != 200 {
		t.Fatalf("status failed: %d", w.Result().StatusCode())
	}
	if body := decodeBody(t, w); body["status"] != "not_checked_in" {
		t.Fatalf("expected not_checked_in, got %v", body)
	}
}

func TestBusinessErrorShape(t *testing.T) {
	engine := newTestEngine(t, sheet.NewMock(nil))

	w := perform(t, engine, "POST", `{"action":"check-in","employeeId":"000042"}`)
	if w.Result().StatusCode() != 400 {
		t.Fatalf("check-in before register must be 400, got %d", w.Result().StatusCode())
	}

	body := decodeBody(t, w)
	if body["status"] != "error" {
		t.Fatalf("failure body must have status error: %v", body)
	}
	if body["message"] != "User not registered. Please register first." {
		t.Fatalf("unexpected message: %v", body)
	}
}
