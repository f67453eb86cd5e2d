package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// DiaryEntryRequest 日记创建请求
type DiaryEntryRequest struct {
	Content string `json:"content"`
	Mood    string `json:"mood"`
}

// ValidateDiaryEntry 验证日记创建请求
func ValidateDiaryEntry(c *gin.Context) (*DiaryEntryRequest, error) {
	rules := govalidator.MapData{
		"content": []string{"required", "min:1"},
		"mood":    []string{"in:ansiosa,feliz,confusa,triste,com_raiva,apaixonada"},
	}

	messages := govalidator.MapData{
		"content": []string{
			"required:日记内容不能为空",
			"min:日记内容不能为空",
		},
		"mood": []string{
			"in:无效的心情类型",
		},
	}

	return Validate[DiaryEntryRequest](c, rules, messages)
}
