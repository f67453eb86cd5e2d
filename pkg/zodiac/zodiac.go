// Package zodiac 根据出生日期计算太阳星座
package zodiac

import "time"

// Signs 十二星座，按黄道顺序排列
var Signs = []string{
	"白羊座", "金牛座", "双子座", "巨蟹座", "狮子座", "处女座",
	"天秤座", "天蝎座", "射手座", "摩羯座", "水瓶座", "双鱼座",
}

// SunSign 根据出生日期（格式 2006-01-02）返回太阳星座
// 日期解析失败时返回空字符串，由调用方决定兜底行为
func SunSign(birthDate string) string {
	t, err := time.Parse("2006-01-02", birthDate)
	if err != nil {
		return ""
	}

	month := int(t.Month())
	day := t.Day()

	switch {
	case (month == 3 && day >= 21) || (month == 4 && day <= 19):
		return "白羊座"
	case (month == 4 && day >= 20) || (month == 5 && day <= 20):
		return "金牛座"
	case (month == 5 && day >= 21) || (month == 6 && day <= 20):
		return "双子座"
	case (month == 6 && day >= 21) || (month == 7 && day <= 22):
		return "巨蟹座"
	case (month == 7 && day >= 23) || (month == 8 && day <= 22):
		return "狮子座"
	case (month == 8 && day >= 23) || (month == 9 && day <= 22):
		return "处女座"
	case (month == 9 && day >= 23) || (month == 10 && day <= 22):
		return "天秤座"
	case (month == 10 && day >= 23) || (month == 11 && day <= 21):
		return "天蝎座"
	case (month == 11 && day >= 22) || (month == 12 && day <= 21):
		return "射手座"
	case (month == 12 && day >= 22) || (month == 1 && day <= 19):
		return "摩羯座"
	case (month == 1 && day >= 20) || (month == 2 && day <= 18):
		return "水瓶座"
	default:
		return "双鱼座"
	}
}
