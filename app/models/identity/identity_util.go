package identity

// 订阅套餐
const (
	PlanEssencia  = "essencia"  // 基础档
	PlanConexao   = "conexao"   // 进阶档
	PlanPlenitude = "plenitude" // 旗舰档
)

// Plans 全部套餐标识
var Plans = []string{PlanEssencia, PlanConexao, PlanPlenitude}

// IsValidPlan 校验套餐标识
func IsValidPlan(plan string) bool {
	for _, p := range Plans {
		if p == plan {
			return true
		}
	}
	return false
}
