package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 请求层错误。
var (
	InvalidRequest  = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	UnknownAction   = Definition{Code: "UNKNOWN_ACTION", Message: "Unknown action"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
)

// 考勤业务错误，文案保持和客户端约定一致。
var (
	NotRegistered     = Definition{Code: "NOT_REGISTERED", Message: "User not registered. Please register first."}
	AlreadyCheckedIn  = Definition{Code: "ALREADY_CHECKED_IN", Message: "Already checked in for today."}
	AlreadyCheckedOut = Definition{Code: "ALREADY_CHECKED_OUT", Message: "Already checked out for today."}
	CheckInRequired   = Definition{Code: "CHECK_IN_REQUIRED", Message: "Please check-in first."}
	NoRecordToday     = Definition{Code: "NO_RECORD_TODAY", Message: "No attendance record for today. Please check in first."}
)

// 服务端故障。
var (
	ConfigMissing      = Definition{Code: "CONFIG_MISSING", Message: "Server configuration error"}
	SheetSchemaInvalid = Definition{Code: "SHEET_SCHEMA_INVALID", Message: "Sheet structure is invalid. Please check column headers."}
	SheetIOFailed      = Definition{Code: "SHEET_IO_FAILED", Message: "Failed to access attendance sheet. Please check sheet permissions."}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidRequest.Code:     InvalidRequest,
	UnknownAction.Code:      UnknownAction,
	TooManyRequests.Code:    TooManyRequests,
	NotRegistered.Code:      NotRegistered,
	AlreadyCheckedIn.Code:   AlreadyCheckedIn,
	AlreadyCheckedOut.Code:  AlreadyCheckedOut,
	CheckInRequired.Code:    CheckInRequired,
	NoRecordToday.Code:      NoRecordToday,
	ConfigMissing.Code:      ConfigMissing,
	SheetSchemaInvalid.Code: SheetSchemaInvalid,
	SheetIOFailed.Code:      SheetIOFailed,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// WithMessage 返回同码不同文案的副本，用于把底层错误细节透出去。
func (d Definition) WithMessage(msg string) Definition {
	d.Message = msg
	return d
}
