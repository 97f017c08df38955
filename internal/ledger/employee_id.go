package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 员工号是 6 位零填充的流水号。脏数据（字母、混排）不许把注册打挂：
// 去掉非数字后解析，解析不动的直接跳过。

const employeeIDWidth = 6

func stripNonDigits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// nextEmployeeID 取现有 ID 列数字最大值加一。算不出合法值时退化为
// 当前 Unix 时间戳的末 6 位，保证注册总能拿到一个 ID。
func nextEmployeeID(existing []string, now time.Time) string {
	max := int64(0)
	for _, raw := range existing {
		digits := stripNonDigits(raw)
		if digits == "" {
			continue
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}

	next := max + 1
	if next > 999999 {
		return fmt.Sprintf("%06d", now.Unix()%1000000)
	}

	return fmt.Sprintf("%0*d", employeeIDWidth, next)
}
