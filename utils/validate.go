package utils

import (
	"regexp"
)

var mobileRe = regexp.MustCompile(`^[0-9]{10}$`)

// ValidateMobile 注册身份键是 10 位手机号
func ValidateMobile(mobile string) bool {
	return mobileRe.MatchString(mobile)
}
