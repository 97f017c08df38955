package kiosk

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"PunchPass/internal/model"
	"PunchPass/internal/model/dto"
)

// fakeServer 按 action 应答的考勤服务端替身，记录收到的每个动作
type fakeServer struct {
	mu      sync.Mutex
	actions []string

	qrCode   string
	statuses []string // 依次弹出的 status 应答
}

func (f *fakeServer) handler(w http.ResponseWriter, r *http.Request) {
	var req dto.AttendanceRequest
	json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.actions = append(f.actions, req.Action)
	f.mu.Unlock()

	switch req.Action {
	case "validate-qr":
		if req.QRCode == f.qrCode {
			json.NewEncoder(w).Encode(map[string]string{"status": "valid", "message": "QR code is valid"})
		} else {
			json.NewEncoder(w).Encode(map[string]string{"status": "invalid", "message": "Invalid QR code. Please scan the authorized QR code."})
		}

	case "status":
		f.mu.Lock()
		status := "not_checked_in"
		if len(f.statuses) > 0 {
			status = f.statuses[0]
			f.statuses = f.statuses[1:]
		}
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"status": status})

	case "check-in", "check-out":
		json.NewEncoder(w).Encode(map[string]string{"status": "success", "time": "09:30:00"})

	case "register":
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "success",
			"message": "Registration successful",
			"userData": model.UserData{
				FullName:   req.FullName,
				Mobile:     req.Mobile,
				EmployeeID: "000001",
				Department: req.Department,
			},
		})

	default:
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": "Unknown action"})
	}
}

func (f *fakeServer) count(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.actions {
		if a == action {
			n++
		}
	}
	return n
}

func newTestKiosk(t *testing.T, fake *fakeServer) (*Controller, func(time.Duration)) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)

	ctrl := NewController(NewAPIClient(srv.URL), NewMemoryStore(), NewMemoryStore(), nil)

	clock := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	ctrl.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}
	advance := func(d time.Duration) {
		mu.Lock()
		clock = clock.Add(d)
		mu.Unlock()
	}

	ctrl.Start()
	return ctrl, advance
}

func TestUserBlobRoundTrip(t *testing.T) {
	user := &model.UserData{
		FullName:   "Alice Smith",
		Mobile:     "5551234567",
		EmployeeID: "000001",
		Department: "Engineering",
	}

	blob, err := EncodeUserBlob(user)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	got, err := DecodeUserBlob(blob)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if *got != *user {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}

func TestStartDropsCorruptedBlob(t *testing.T) {
	durable := NewMemoryStore()
	durable.Set(UserBlobKey, "not base64 at all!!!")

	ctrl := NewController(NewAPIClient("http://unused"), durable, NewMemoryStore(), nil)
	ctrl.Start()

	if ctrl.User() != nil {
		t.Fatalf("corrupted blob must not produce a user")
	}
	if _, ok := durable.Get(UserBlobKey); ok {
		t.Fatalf("corrupted blob must be deleted")
	}

	state, _ := ctrl.State()
	if state != StateAwaitingScan {
		t.Fatalf("expected awaiting-scan after start, got %s", state)
	}
}

func TestScanCooldownDropsRapidScans(t *testing.T) {
	fake := &fakeServer{qrCode: "the-code"}
	ctrl, advance := newTestKiosk(t, fake)
	ctx := context.Background()

	ctrl.HandleScan(ctx, "wrong-code")
	// 冷却期内的第二次扫码静默丢弃
	advance(500 * time.Millisecond)
	ctrl.HandleScan(ctx, "wrong-code")

	if got := fake.count("validate-qr"); got != 1 {
		t.Fatalf("expected 1 validate-qr call, got %d", got)
	}

	// 冷却期过了就放行
	advance(3 * time.Second)
	ctrl.HandleScan(ctx, "wrong-code")
	if got := fake.count("validate-qr"); got != 2 {
		t.Fatalf("expected 2 validate-qr calls after cooldown, got %d", got)
	}
}

func TestInvalidQRGoesToErrorState(t *testing.T) {
	fake := &fakeServer{qrCode: "the-code"}
	ctrl, _ := newTestKiosk(t, fake)

	ctrl.HandleScan(context.Background(), "wrong-code")

	state, message := ctrl.State()
	if state != StateError {
		t.Fatalf("expected error state, got %s", state)
	}
	if message == "" {
		t.Fatalf("error state must carry a message")
	}
}

func TestValidScanUnknownUserOpensRegistration(t *testing.T) {
	fake := &fakeServer{qrCode: "the-code"}
	ctrl, _ := newTestKiosk(t, fake)

	ctrl.HandleScan(context.Background(), "the-code")

	state, _ := ctrl.State()
	if state != StateRegistering {
		t.Fatalf("unknown user after valid scan must go to registration, got %s", state)
	}
}

func TestValidScanKnownUserChecksIn(t *testing.T) {
	fake := &fakeServer{qrCode: "the-code", statuses: []string{"not_checked_in", "checked_in"}}
	ctrl, _ := newTestKiosk(t, fake)

	blob, _ := EncodeUserBlob(&model.UserData{FullName: "Alice", Mobile: "5551234567", EmployeeID: "000001", Department: "Eng"})
	ctrl.durable.Set(UserBlobKey, blob)
	ctrl.Start()

	ctrl.HandleScan(context.Background(), "the-code")

	state, message := ctrl.State()
	if state != StateCheckedIn {
		t.Fatalf("expected checked-in, got %s (%s)", state, message)
	}
	if fake.count("check-in") != 1 {
		t.Fatalf("expected exactly one check-in call")
	}
	// 打卡成功后缓存作废，重新拉了一次状态
	if fake.count("status") != 2 {
		t.Fatalf("expected status refetch after mutation, got %d calls", fake.count("status"))
	}
}

func TestStatusMemoizedWithinTTL(t *testing.T) {
	fake := &fakeServer{qrCode: "the-code"}
	ctrl, advance := newTestKiosk(t, fake)
	ctx := context.Background()

	ctrl.fetchStatus(ctx, "000001")
	advance(10 * time.Second)
	ctrl.fetchStatus(ctx, "000001")

	if got := fake.count("status"); got != 1 {
		t.Fatalf("second fetch within TTL must hit the memo, got %d calls", got)
	}

	advance(31 * time.Second)
	ctrl.fetchStatus(ctx, "000001")
	if got := fake.count("status"); got != 2 {
		t.Fatalf("expired memo must refetch, got %d calls", got)
	}
}

func TestSubmitRegistrationPersistsUser(t *testing.T) {
	fake := &fakeServer{qrCode: "the-code"}
	ctrl, _ := newTestKiosk(t, fake)
	ctx := context.Background()

	ctrl.SubmitRegistration(ctx, RegistrationForm{
		FullName:   "Alice Smith",
		Mobile:     "5551234567",
		Department: "Engineering",
	})

	state, _ := ctrl.State()
	if state != StateRegisteredIdle {
		t.Fatalf("expected registered-idle, got %s", state)
	}

	user := ctrl.User()
	if user == nil || user.EmployeeID != "000001" {
		t.Fatalf("registered identity not retained: %+v", user)
	}

	blob, ok := ctrl.durable.Get(UserBlobKey)
	if !ok {
		t.Fatalf("durable blob must be written on success")
	}
	if decoded, err := DecodeUserBlob(blob); err != nil || decoded.EmployeeID != "000001" {
		t.Fatalf("durable blob must decode back to the user: %v %+v", err, decoded)
	}

	if _, ok := ctrl.session.Get(SessionFormKey); ok {
		t.Fatalf("session form must be cleared on success")
	}
}

func TestSubmitRegistrationValidation(t *testing.T) {
	fake := &fakeServer{qrCode: "the-code"}
	ctrl, _ := newTestKiosk(t, fake)
	ctx := context.Background()

	ctrl.SubmitRegistration(ctx, RegistrationForm{FullName: "Alice", Mobile: "123", Department: "Eng"})

	state, message := ctrl.State()
	if state != StateRegistering || message == "" {
		t.Fatalf("bad mobile must stay on the form with a message, got %s (%s)", state, message)
	}
	if fake.count("register") != 0 {
		t.Fatalf("validation failures must not reach the server")
	}
}

func TestSessionFormRecovery(t *testing.T) {
	ctrl := NewController(NewAPIClient("http://unused"), NewMemoryStore(), NewMemoryStore(), nil)
	ctrl.Start()

	form := RegistrationForm{FullName: "Alice", Mobile: "5551234567", Department: "Eng"}
	blob, _ := encodeForm(form)
	ctrl.session.Set(SessionFormKey, blob)

	got, ok := ctrl.RestoreForm()
	if !ok || got != form {
		t.Fatalf("form recovery failed: %v %+v", ok, got)
	}

	// 坏的会话 blob 直接清掉
	ctrl.session.Set(SessionFormKey, "{broken")
	if _, ok := ctrl.RestoreForm(); ok {
		t.Fatalf("broken session blob must not restore")
	}
	if _, ok := ctrl.session.Get(SessionFormKey); ok {
		t.Fatalf("broken session blob must be deleted")
	}
}

// fakeProvider 指定哪些朝向可用
type fakeProvider struct {
	available map[string]bool
	opened    []string
}

type fakeSource struct{ facing string }

func (s *fakeSource) Facing() string                  { return s.facing }
func (s *fakeSource) NextFrame() (image.Image, error) { return nil, errors.New("no frames") }
func (s *fakeSource) Close() error                    { return nil }

func (p *fakeProvider) Open(facing string) (FrameSource, error) {
	p.opened = append(p.opened, facing)
	if p.available[facing] {
		return &fakeSource{facing: facing}, nil
	}
	return nil, errors.New("constraint not satisfiable")
}

func TestCameraFallbackOrder(t *testing.T) {
	// 后置打不开就试前置
	p := &fakeProvider{available: map[string]bool{FacingUser: true}}
	src, err := OpenCamera(p)
	if err != nil {
		t.Fatalf("OpenCamera failed: %v", err)
	}
	if src.Facing() != FacingUser {
		t.Fatalf("expected user-facing camera, got %q", src.Facing())
	}
	if len(p.opened) != 2 || p.opened[0] != FacingEnvironment {
		t.Fatalf("fallback order wrong: %v", p.opened)
	}
}

func TestCameraAllConstraintsFail(t *testing.T) {
	fake := &fakeServer{qrCode: "the-code"}
	ctrl, _ := newTestKiosk(t, fake)

	p := &fakeProvider{available: map[string]bool{}}
	if _, err := ctrl.StartCamera(p); !errors.Is(err, ErrCameraUnavailable) {
		t.Fatalf("expected ErrCameraUnavailable, got %v", err)
	}

	// 摄像头失败不是终态，上传通道还在
	state, message := ctrl.State()
	if state != StateAwaitingScan {
		t.Fatalf("camera failure must not leave awaiting-scan, got %s", state)
	}
	if message == "" {
		t.Fatalf("camera failure should surface a hint")
	}
}
