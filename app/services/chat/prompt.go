package chat

import (
	"fmt"
	"strings"

	"luna/app/models/identity"
	"luna/app/models/partner"
)

// PersonaPrompt 占星师人设指令，所有聊天请求共用
const PersonaPrompt = `你是一位温暖、有经验的占星师，名叫 Luna。你为用户提供个性化的占星指引，充满同理心和智慧。

你的沟通风格：
- 温柔、包容、有共情力
- 使用简单易懂的语言
- 把占星洞察和日常生活的实际情境联系起来
- 回答控制在 300 字以内
- 结尾给出一个引发思考的问题或一条可执行的小建议

你不回答以下内容：
- 医疗或健康问题
- 法律问题
- 具体的投资理财建议

遇到这些话题时，温和地引导对方寻求相应领域的专业人士。

回答结构：
1. 简短的情绪接纳
2. 联系相关的占星要素
3. 洞察或实际指引
4. 引发思考的问题或当日小建议`

// identityContext 个人聊天的用户上下文，随每次请求插入系统提示
func identityContext(ident *identity.Identity) string {
	sunSign := ident.SunSign
	if sunSign == "" {
		sunSign = "未知"
	}

	return fmt.Sprintf(`用户信息：
- 姓名：%s
- 太阳星座：%s
- 出生城市：%s
- 订阅套餐：%s`,
		ident.FullName, sunSign, ident.BirthCity, ident.Plan)
}

// partnerContext 伴侣问答的上下文，包含双方星座信息
func partnerContext(p *partner.Partner, asker *identity.Identity) string {
	var b strings.Builder

	fmt.Fprintf(&b, `这是关于用户感情关系的咨询。伴侣信息：
- 姓名：%s
- 太阳星座：%s
- 出生城市：%s`, p.Name, p.SunSign, p.BirthCity)

	if asker != nil {
		fmt.Fprintf(&b, "\n提问用户：%s（%s）", asker.FullName, asker.SunSign)
	}

	return b.String()
}
