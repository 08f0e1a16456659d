package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 리포트, API 응답에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4
//   Load  Prepare  Summary  Model  Rank

// Stage represents a pipeline stage
type Stage string

const (
	// StageLoad S0: 거래 로그 로드
	// 책임: CSV/DB 소스 읽기, 필수 컬럼 검증, 프로세스 단위 캐시
	// 위치: internal/s0_load/
	StageLoad Stage = "S0_LOAD"

	// StagePrepare S1: 거래 정제
	// 책임: 날짜 파싱, 익명/반품 거래 제거, 거래 금액 계산
	// 위치: internal/s1_prepare/
	StagePrepare Stage = "S1_PREPARE"

	// StageSummary S2: 고객별 요약
	// 책임: frequency / recency / T / monetary_value 집계
	// 위치: internal/s2_summary/
	StageSummary Stage = "S2_SUMMARY"

	// StageModel S3: 모델 적합 및 예측
	// 책임: BG/NBD, Gamma-Gamma 적합, 예상 거래수/평균 금액/CLV 계산
	// 위치: internal/s3_model/
	StageModel Stage = "S3_MODEL"

	// StageRank S4: CLV 순위
	// 책임: CLV 내림차순 안정 정렬, Top N 선별
	// 위치: internal/selection/
	StageRank Stage = "S4_RANK"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageLoad:
		return "S0"
	case StagePrepare:
		return "S1"
	case StageSummary:
		return "S2"
	case StageModel:
		return "S3"
	case StageRank:
		return "S4"
	default:
		return "UNKNOWN"
	}
}

// Description returns a human readable description of the stage
func (s Stage) Description() string {
	switch s {
	case StageLoad:
		return "load transaction log"
	case StagePrepare:
		return "clean transactions"
	case StageSummary:
		return "summarise customers"
	case StageModel:
		return "fit models and score customers"
	case StageRank:
		return "rank customers by CLV"
	default:
		return "unknown"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageLoad,
		StagePrepare,
		StageSummary,
		StageModel,
		StageRank,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// PipelineResult represents the result of a pipeline stage execution
type PipelineResult struct {
	Stage       Stage                  `json:"stage" yaml:"stage"`
	Success     bool                   `json:"success" yaml:"success"`
	InputCount  int                    `json:"input_count" yaml:"input_count"`
	OutputCount int                    `json:"output_count" yaml:"output_count"`
	Duration    int64                  `json:"duration_ms" yaml:"duration_ms"`
	Error       string                 `json:"error,omitempty" yaml:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
