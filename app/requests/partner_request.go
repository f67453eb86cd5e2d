package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// PartnerRequest 伴侣档案创建请求
type PartnerRequest struct {
	Name        string `json:"name"`
	BirthDate   string `json:"birth_date"`
	BirthTime   string `json:"birth_time"`
	BirthCity   string `json:"birth_city"`
	BirthState  string `json:"birth_state"`
	PhotoBase64 string `json:"photo_base64"`
}

// ValidatePartner 验证伴侣档案创建请求
func ValidatePartner(c *gin.Context) (*PartnerRequest, error) {
	rules := govalidator.MapData{
		"name":       []string{"required"},
		"birth_date": []string{"required", "date"},
		"birth_city": []string{"required"},
	}

	messages := govalidator.MapData{
		"name": []string{
			"required:伴侣姓名不能为空",
		},
		"birth_date": []string{
			"required:出生日期不能为空",
			"date:出生日期格式不正确",
		},
		"birth_city": []string{
			"required:出生城市不能为空",
		},
	}

	return Validate[PartnerRequest](c, rules, messages)
}
