package kiosk

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"PunchPass/internal/model"
	"PunchPass/internal/model/dto"
	"PunchPass/pkg/logger"
	"PunchPass/utils"
)

// State 终端状态机的节点
type State string

const (
	StateUninitialized  State = "uninitialized"
	StateAwaitingScan   State = "awaiting-scan"
	StateCameraActive   State = "camera-active"
	StateProcessing     State = "processing"
	StateRegistering    State = "registering"
	StateRegisteredIdle State = "registered-idle"
	StateCheckedIn      State = "checked-in"
	StateCompleted      State = "completed"
	StateError          State = "error"
)

const (
	scanCooldown  = 2 * time.Second
	statusMemoTTL = 30 * time.Second
)

// GeoSource 定位来源。拿不到位置就返回 nil，打卡照常进行。
type GeoSource interface {
	Location() *dto.Location
}

// RegistrationForm 注册表单的原始输入
type RegistrationForm struct {
	FullName   string `json:"fullName"`
	Mobile     string `json:"mobile"`
	Department string `json:"department"`
}

// Controller 打卡终端的状态机。
// 并发入口只有扫码回调和表单提交两个，一个 in-flight 布尔位把它们串行化：
// 调用进行中到达的输入直接丢弃，不排队。
type Controller struct {
	mu sync.Mutex

	api     *APIClient
	durable Store
	session Store
	geo     GeoSource

	state   State
	message string
	user    *model.UserData

	inFlight     bool
	lastScanAt   time.Time
	statusMemo   *Reply
	statusMemoAt time.Time

	now func() time.Time
}

func NewController(api *APIClient, durable, session Store, geo GeoSource) *Controller {
	return &Controller{
		api:     api,
		durable: durable,
		session: session,
		geo:     geo,
		state:   StateUninitialized,
		now:     time.Now,
	}
}

// Start 启动恢复：读持久身份，坏 blob 直接清掉，再回到待扫码态。
// 定位权限是 best effort，这里不等它。
func (k *Controller) Start() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if blob, ok := k.durable.Get(UserBlobKey); ok {
		user, err := DecodeUserBlob(blob)
		if err != nil {
			logger.Logger.Warn("Dropping corrupted user blob", zap.Error(err))
			k.durable.Delete(UserBlobKey)
		} else {
			k.user = user
		}
	}

	k.state = StateAwaitingScan
}

// State 当前状态和提示信息
func (k *Controller) State() (State, string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state, k.message
}

// User 当前恢复出的注册身份，未注册时为 nil
func (k *Controller) User() *model.UserData {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.user
}

// RestoreForm 会话存储里未提交完的表单，页面刷新后回填用
func (k *Controller) RestoreForm() (RegistrationForm, bool) {
	blob, ok := k.session.Get(SessionFormKey)
	if !ok {
		return RegistrationForm{}, false
	}

	form, err := decodeForm(blob)
	if err != nil {
		k.session.Delete(SessionFormKey)
		return RegistrationForm{}, false
	}
	return form, true
}

// HandleScan 扫码入口。冷却期内的重复扫码静默丢弃，这是防抖不是错误。
func (k *Controller) HandleScan(ctx context.Context, code string) {
	k.mu.Lock()

	if k.inFlight {
		k.mu.Unlock()
		return
	}

	now := k.now()
	if now.Sub(k.lastScanAt) < scanCooldown {
		k.mu.Unlock()
		return
	}
	k.lastScanAt = now

	k.inFlight = true
	k.state = StateProcessing
	k.mu.Unlock()

	defer k.release()

	// 解码结果先过服务端校验，摄像头和上传共用这条路
	reply := k.api.Do(ctx, &dto.AttendanceRequest{
		Action: "validate-qr",
		QRCode: code,
	})

	if reply.Status != "valid" {
		k.fail(reply.Message, StateError)
		return
	}

	k.mu.Lock()
	user := k.user
	k.mu.Unlock()

	if user == nil {
		// 没注册过，转注册表单
		k.mu.Lock()
		k.state = StateRegistering
		k.message = ""
		k.mu.Unlock()
		return
	}

	k.branchOnStatus(ctx, user)
}

// branchOnStatus 已注册用户扫码后按当天状态自动分流：
// 没打上班卡就打上班卡，打了就打下班卡，都打完只展示结果。
func (k *Controller) branchOnStatus(ctx context.Context, user *model.UserData) {
	status := k.fetchStatus(ctx, user.EmployeeID)
	if status.Status == "error" {
		k.fail(status.Message, StateError)
		return
	}

	switch status.Status {
	case string(model.StatusNotRegistered):
		// 服务端不认这个工号，本地身份已经失效
		k.mu.Lock()
		k.user = nil
		k.durable.Delete(UserBlobKey)
		k.state = StateRegistering
		k.message = ""
		k.mu.Unlock()

	case string(model.StatusNotCheckedIn):
		k.performClock(ctx, user, "check-in", StateCheckedIn)

	case string(model.StatusCheckedIn):
		k.performClock(ctx, user, "check-out", StateCompleted)

	case string(model.StatusCompleted):
		k.mu.Lock()
		k.state = StateCompleted
		k.message = "Attendance already completed for today."
		k.mu.Unlock()

	default:
		k.fail("Unexpected status from server", StateError)
	}
}

// performClock 执行一次打卡，成功后作废状态缓存并重新拉一次状态。
func (k *Controller) performClock(ctx context.Context, user *model.UserData, action string, next State) {
	var location *dto.Location
	if k.geo != nil {
		location = k.geo.Location()
	}

	reply := k.api.Do(ctx, &dto.AttendanceRequest{
		Action:     action,
		EmployeeID: user.EmployeeID,
		Location:   location,
	})

	if reply.Status != "success" {
		k.fail(reply.Message, StateError)
		return
	}

	k.invalidateStatus()
	k.fetchStatus(ctx, user.EmployeeID)

	k.mu.Lock()
	k.state = next
	k.message = reply.Time
	k.mu.Unlock()
}

// SubmitRegistration 注册表单提交。
// 提交前先把表单存进会话存储，网络失败后刷新页面还能回填；
// success 和 exists 都算注册成立，落持久 blob、清会话。
func (k *Controller) SubmitRegistration(ctx context.Context, form RegistrationForm) {
	k.mu.Lock()
	if k.inFlight {
		k.mu.Unlock()
		return
	}
	k.inFlight = true
	k.mu.Unlock()

	defer k.release()

	if form.FullName == "" || form.Mobile == "" || form.Department == "" {
		k.fail("Please fill in all fields", StateRegistering)
		return
	}
	if !utils.ValidateMobile(form.Mobile) {
		k.fail("Please enter a valid 10-digit mobile number", StateRegistering)
		return
	}

	if blob, err := encodeForm(form); err == nil {
		k.session.Set(SessionFormKey, blob)
	}

	var location *dto.Location
	if k.geo != nil {
		location = k.geo.Location()
	}

	reply := k.api.Do(ctx, &dto.AttendanceRequest{
		Action:     "register",
		FullName:   form.FullName,
		Mobile:     form.Mobile,
		Department: form.Department,
		Location:   location,
	})

	if reply.Status != "success" && reply.Status != "exists" {
		k.fail(reply.Message, StateRegistering)
		return
	}

	if reply.UserData == nil {
		k.fail("Registration succeeded but no user data returned", StateRegistering)
		return
	}

	if blob, err := EncodeUserBlob(reply.UserData); err == nil {
		if err := k.durable.Set(UserBlobKey, blob); err != nil {
			logger.Logger.Warn("Failed to persist user blob", zap.Error(err))
		}
	}
	k.session.Delete(SessionFormKey)

	k.mu.Lock()
	k.user = reply.UserData
	k.state = StateRegisteredIdle
	k.message = reply.Message
	k.mu.Unlock()
}

// fetchStatus 带 30 秒缓存的状态查询，打卡成功后由 invalidateStatus 作废。
func (k *Controller) fetchStatus(ctx context.Context, employeeID string) *Reply {
	k.mu.Lock()
	if k.statusMemo != nil && k.now().Sub(k.statusMemoAt) < statusMemoTTL {
		memo := k.statusMemo
		k.mu.Unlock()
		return memo
	}
	k.mu.Unlock()

	reply := k.api.Do(ctx, &dto.AttendanceRequest{
		Action:     "status",
		EmployeeID: employeeID,
	})

	if reply.Status != "error" {
		k.mu.Lock()
		k.statusMemo = reply
		k.statusMemoAt = k.now()
		k.mu.Unlock()
	}

	return reply
}

// StartCamera 打开摄像头并进入取景态。
// 全部朝向都打不开只是提示一下，上传通道还能用，不算致命错误。
func (k *Controller) StartCamera(provider CameraProvider) (FrameSource, error) {
	src, err := OpenCamera(provider)
	if err != nil {
		k.mu.Lock()
		k.message = "Camera unavailable. You can upload a QR image instead."
		k.mu.Unlock()
		return nil, err
	}

	k.mu.Lock()
	k.state = StateCameraActive
	k.mu.Unlock()
	return src, nil
}

// PumpFrames 持续取帧找二维码，找到一个就走扫码入口。
// 解不出码的帧是常态，静默跳过。
func (k *Controller) PumpFrames(ctx context.Context, src FrameSource) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, err := src.NextFrame()
		if err != nil {
			return
		}

		code, err := DecodeQRImage(frame)
		if err != nil {
			continue
		}

		k.HandleScan(ctx, code)
	}
}

func (k *Controller) invalidateStatus() {
	k.mu.Lock()
	k.statusMemo = nil
	k.mu.Unlock()
}

func (k *Controller) fail(message string, next State) {
	if message == "" {
		message = "Something went wrong. Please try again."
	}
	k.mu.Lock()
	k.state = next
	k.message = message
	k.mu.Unlock()
}

func (k *Controller) release() {
	k.mu.Lock()
	k.inFlight = false
	k.mu.Unlock()
}
