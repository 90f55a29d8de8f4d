package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"
)

const DateLayout = "2006-01-02"

// ParseScheduleDate 解析 URL 中的日期，既接受 2006-01-02 格式，也接受 today、tomorrow、next monday 这样的写法。
// 相对日期以 ref 为基准，返回统一的 2006-01-02 格式
func ParseScheduleDate(s string, ref time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("日期不能为空")
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.Format(DateLayout), nil
	}

	expr := strings.ToLower(strings.ReplaceAll(s, "-", " "))
	t, err := naturaldate.Parse(expr, ref, naturaldate.WithDirection(naturaldate.Future))
	if err != nil {
		return "", fmt.Errorf("无法解析日期 %q", s)
	}
	// 无法识别的表达式会原样返回基准时间
	if t.Equal(ref) && expr != "today" && expr != "now" {
		return "", fmt.Errorf("无法解析日期 %q", s)
	}

	return t.Format(DateLayout), nil
}

// ValidateCopyDates 检查复制排班时的源日期和目标日期
func ValidateCopyDates(source, target string) error {
	if source == target {
		return errors.New("目标日期不能与当前日期相同")
	}
	return nil
}
