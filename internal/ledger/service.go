package ledger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"PunchPass/config"
	"PunchPass/internal/audit"
	"PunchPass/internal/cache"
	"PunchPass/internal/model"
	"PunchPass/internal/model/dto"
	"PunchPass/pkg/errors"
	"PunchPass/pkg/logger"
	"PunchPass/pkg/metrics"
	"PunchPass/storage/sheet"
	"PunchPass/utils"
)

// Service 台账处理器：每个动作先全表读建索引，再做定点追加或覆写。
// 无状态，所有状态都在表里。
type Service struct {
	values sheet.Values
	tab    string
	qrCode string
	loc    *time.Location
	now    func() time.Time
}

var (
	ledgerService *Service
	ledgerOnce    sync.Once
)

// Ledger 返回全局单例，依赖从配置和全局客户端取。
func Ledger() *Service {
	ledgerOnce.Do(func() {
		ledgerService = NewService(
			sheet.Client(),
			config.Cfg.SheetTab,
			config.Cfg.QRAuthCode,
			config.Cfg.Location(),
			time.Now,
		)
	})

	return ledgerService
}

// NewService 显式装配入口，单测用 Mock 和固定时钟
func NewService(values sheet.Values, tab, qrCode string, loc *time.Location, now func() time.Time) *Service {
	return &Service{
		values: values,
		tab:    tab,
		qrCode: qrCode,
		loc:    loc,
		now:    now,
	}
}

const mutationLockTTL = 10 * time.Second

// guard 写动作的互斥锁。拿不到锁说明同键请求还在飞，直接拒绝；
// Redis 本身出错时降级放行，回到无锁语义。
func (s *Service) guard(ctx context.Context, action, key string) (release func(), err error) {
	ok, lockErr := cache.TryLock(ctx, key, mutationLockTTL)
	if lockErr != nil {
		logger.Logger.Warn("Lock unavailable, proceeding without guard",
			zap.String("key", key),
			zap.Error(lockErr),
		)
		return func() {}, nil
	}

	if !ok {
		if m := metrics.GetMetrics(); m != nil {
			m.RecordLockContention(ctx, action)
		}
		return nil, errors.TooManyRequests.WithMessage("Another request for this employee is in progress. Please retry.")
	}

	return func() {
		if err := cache.Unlock(ctx, key); err != nil {
			logger.Logger.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// Register 变体 B：手机号是身份键，员工号服务端生成。重复注册幂等返回 exists。
func (s *Service) Register(ctx context.Context, req *dto.AttendanceRequest) (*dto.RegisterResponse, error) {
	if req.FullName == "" || req.Mobile == "" || req.Department == "" {
		return nil, errors.InvalidRequest.WithMessage("Missing required fields for registration")
	}

	if !utils.ValidateMobile(req.Mobile) {
		return nil, errors.InvalidRequest.WithMessage("Mobile number must be exactly 10 digits")
	}

	release, err := s.guard(ctx, "register", "register:"+req.Mobile)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now()
	today := utils.FormatDate(now, s.loc)

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	if idx, ok := snap.byMobile[req.Mobile]; ok {
		return &dto.RegisterResponse{
			Status:   "exists",
			Message:  "User already registered",
			UserData: snap.userDataAt(idx),
		}, nil
	}

	var existingIDs []string
	for i := 1; i < len(snap.rows); i++ {
		if id := cell(snap.rows[i], snap.cols.employeeID); id != "" {
			existingIDs = append(existingIDs, id)
		}
	}
	employeeID := nextEmployeeID(existingIDs, now)

	newRow := buildRow(snap.cols, &model.UserData{
		FullName:   req.FullName,
		Mobile:     req.Mobile,
		EmployeeID: employeeID,
		Department: req.Department,
	}, today)

	if err := s.values.Append(ctx, s.tab, [][]string{newRow}); err != nil {
		if m := metrics.GetMetrics(); m != nil {
			m.RecordSheetError(ctx, "append")
		}
		return nil, errors.SheetIOFailed.WithMessage("Failed to register user")
	}

	audit.Record(ctx, employeeID, "register", today, "", "")

	return &dto.RegisterResponse{
		Status:  "success",
		Message: "Registration successful",
		UserData: &model.UserData{
			FullName:   req.FullName,
			Mobile:     req.Mobile,
			EmployeeID: employeeID,
			Department: req.Department,
		},
	}, nil
}

// CheckIn 没有今日行则从注册行补一条再打卡。写之前重读目标行，
// 避免用过期快照把已有的打卡时间盖掉。
func (s *Service) CheckIn(ctx context.Context, employeeID string, loc *dto.Location) (*dto.ClockResponse, error) {
	now := s.now()
	today := utils.FormatDate(now, s.loc)

	release, err := s.guard(ctx, "check-in", employeeID+":"+today)
	if err != nil {
		return nil, err
	}
	defer release()

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	regIdx := snap.employeeRow(employeeID)
	if regIdx == -1 {
		return nil, errors.NotRegistered
	}

	todayIdx := snap.todayRow(employeeID, today)
	if todayIdx == -1 {
		// 今天还没有行：从注册信息补一条，再重读全表确认它落在哪
		user := snap.userDataAt(regIdx)
		user.EmployeeID = employeeID
		newRow := buildRow(snap.cols, user, today)

		if err := s.values.Append(ctx, s.tab, [][]string{newRow}); err != nil {
			if m := metrics.GetMetrics(); m != nil {
				m.RecordSheetError(ctx, "append")
			}
			return nil, errors.SheetIOFailed.WithMessage("Failed to create attendance record")
		}

		snap, err = s.loadSnapshot(ctx)
		if err != nil {
			return nil, errors.SheetIOFailed.WithMessage("Failed to create attendance record")
		}

		todayIdx = snap.todayRow(employeeID, today)
		if todayIdx == -1 {
			// 追加不保证落点，索引里找不到就按末行处理
			todayIdx = len(snap.rows) - 1
		}
	}

	row, err := s.reloadRow(ctx, todayIdx)
	if err != nil {
		return nil, err
	}

	if cell(row, snap.cols.checkInTime) != "" {
		return nil, errors.AlreadyCheckedIn
	}

	clock := utils.FormatClock(now, s.loc)
	if err := s.updatePair(ctx, todayIdx, snap.cols.checkInTime, snap.cols.checkInLoc, clock, loc.Cell()); err != nil {
		return nil, errors.SheetIOFailed.WithMessage("Failed to update check-in")
	}

	audit.Record(ctx, employeeID, "check-in", today, clock, loc.Cell())

	return &dto.ClockResponse{Status: "success", Time: clock}, nil
}

// CheckOut 守卫顺序固定：未注册、今日无记录、未签到、已签退。
func (s *Service) CheckOut(ctx context.Context, employeeID string, loc *dto.Location) (*dto.ClockResponse, error) {
	now := s.now()
	today := utils.FormatDate(now, s.loc)

	release, err := s.guard(ctx, "check-out", employeeID+":"+today)
	if err != nil {
		return nil, err
	}
	defer release()

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	if snap.employeeRow(employeeID) == -1 {
		return nil, errors.NotRegistered
	}

	todayIdx := snap.todayRow(employeeID, today)
	if todayIdx == -1 {
		return nil, errors.NoRecordToday
	}

	row, err := s.reloadRow(ctx, todayIdx)
	if err != nil {
		return nil, err
	}

	if cell(row, snap.cols.checkInTime) == "" {
		return nil, errors.CheckInRequired
	}

	if cell(row, snap.cols.checkOutTime) != "" {
		return nil, errors.AlreadyCheckedOut
	}

	clock := utils.FormatClock(now, s.loc)
	if err := s.updatePair(ctx, todayIdx, snap.cols.checkOutTime, snap.cols.checkOutLoc, clock, loc.Cell()); err != nil {
		return nil, errors.SheetIOFailed.WithMessage("Failed to update check-out")
	}

	audit.Record(ctx, employeeID, "check-out", today, clock, loc.Cell())

	return &dto.ClockResponse{Status: "success", Time: clock}, nil
}

// Status 纯读，不改表。
func (s *Service) Status(ctx context.Context, employeeID string) (*dto.StatusResponse, error) {
	today := utils.FormatDate(s.now(), s.loc)

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	if snap.employeeRow(employeeID) == -1 {
		return &dto.StatusResponse{Status: model.StatusNotRegistered}, nil
	}

	todayIdx := snap.todayRow(employeeID, today)
	if todayIdx == -1 {
		return &dto.StatusResponse{Status: model.StatusNotCheckedIn}, nil
	}

	row, err := s.reloadRow(ctx, todayIdx)
	if err != nil {
		return nil, err
	}

	checkIn := cell(row, snap.cols.checkInTime)
	checkOut := cell(row, snap.cols.checkOutTime)

	switch {
	case checkIn == "":
		return &dto.StatusResponse{Status: model.StatusNotCheckedIn}, nil
	case checkOut == "":
		return &dto.StatusResponse{Status: model.StatusCheckedIn, CheckInTime: checkIn}, nil
	default:
		return &dto.StatusResponse{
			Status:       model.StatusCompleted,
			CheckInTime:  checkIn,
			CheckOutTime: checkOut,
		}, nil
	}
}

// ValidateQR 固定授权串的逐字比对，不碰台账。
func (s *Service) ValidateQR(qrCode string) *dto.QRValidationResponse {
	if qrCode == s.qrCode {
		return &dto.QRValidationResponse{Status: "valid", Message: "QR code is valid"}
	}
	return &dto.QRValidationResponse{Status: "invalid", Message: "Invalid QR code. Please scan the authorized QR code."}
}

// reloadRow 写前按行号重读，返回该行当前内容。
func (s *Service) reloadRow(ctx context.Context, rowIdx int) ([]string, error) {
	rows, err := s.values.Get(ctx, sheet.RowRange(s.tab, rowIdx))
	if err != nil {
		if m := metrics.GetMetrics(); m != nil {
			m.RecordSheetError(ctx, "get")
		}
		return nil, errors.SheetIOFailed.WithMessage("Failed to verify attendance record")
	}

	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// updatePair 写时间和定位两个格。列相邻时一次区间覆写，
// 表被人为调过列序时退化成两次单格覆写，绝不写到别的列上。
func (s *Service) updatePair(ctx context.Context, rowIdx, timeCol, locCol int, clock, locCell string) error {
	if locCol == timeCol+1 {
		return s.recordUpdateErr(ctx, s.values.Update(ctx, sheet.CellRange(s.tab, rowIdx, timeCol, locCol), [][]string{{clock, locCell}}))
	}

	if err := s.recordUpdateErr(ctx, s.values.Update(ctx, sheet.CellRange(s.tab, rowIdx, timeCol, timeCol), [][]string{{clock}})); err != nil {
		return err
	}
	if locCol >= 0 {
		return s.recordUpdateErr(ctx, s.values.Update(ctx, sheet.CellRange(s.tab, rowIdx, locCol, locCol), [][]string{{locCell}}))
	}
	return nil
}

func (s *Service) recordUpdateErr(ctx context.Context, err error) error {
	if err != nil {
		if m := metrics.GetMetrics(); m != nil {
			m.RecordSheetError(ctx, "update")
		}
	}
	return err
}

// buildRow 按当前表头的列序拼一行，考勤四列留空。
func buildRow(cols columns, user *model.UserData, today string) []string {
	width := maxCol(cols) + 1
	row := make([]string, width)

	set := func(idx int, val string) {
		if idx >= 0 {
			row[idx] = val
		}
	}

	set(cols.fullName, user.FullName)
	set(cols.mobile, user.Mobile)
	set(cols.employeeID, user.EmployeeID)
	set(cols.department, user.Department)
	set(cols.date, today)

	return row
}

func maxCol(cols columns) int {
	max := 0
	for _, idx := range []int{
		cols.fullName, cols.mobile, cols.employeeID, cols.department, cols.date,
		cols.checkInTime, cols.checkInLoc, cols.checkOutTime, cols.checkOutLoc,
	} {
		if idx > max {
			max = idx
		}
	}
	return max
}
