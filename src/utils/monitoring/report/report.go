package report

type Report struct {
	Run       *RunReport       `json:"run,omitempty"`
	Contract  *ContractReport  `json:"contract,omitempty"`
	Gateway   *GatewayReport   `json:"gateway,omitempty"`
	Scheduler *SchedulerReport `json:"scheduler,omitempty"`
}
