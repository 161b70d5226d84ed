package uniask

// ControllerV1 大学问答助手 v1 接口控制器
type ControllerV1 struct{}

func NewV1() *ControllerV1 {
	return &ControllerV1{}
}
