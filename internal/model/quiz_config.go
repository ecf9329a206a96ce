package model

// QuestionCount is the target number of questions in a session.
type QuestionCount int

const (
	QuestionCount50  QuestionCount = 50
	QuestionCount100 QuestionCount = 100
	QuestionCount200 QuestionCount = 200
)

// QuestionCounts lists the selectable question counts in display order.
var QuestionCounts = []QuestionCount{QuestionCount50, QuestionCount100, QuestionCount200}

// TimeLimit names a session time limit.
type TimeLimit string

const (
	TimeLimit30   TimeLimit = "30"
	TimeLimit60   TimeLimit = "60"
	TimeLimit120  TimeLimit = "120"
	TimeLimitNone TimeLimit = "none"
)

// TimeLimitOption describes a selectable time limit. Minutes is 0 for "none".
type TimeLimitOption struct {
	Value   TimeLimit `json:"value"`
	Label   string    `json:"label"`
	Minutes int       `json:"minutes"`
}

// TimeLimits lists the selectable time limits in display order.
var TimeLimits = []TimeLimitOption{
	{Value: TimeLimit30, Label: "30 минут", Minutes: 30},
	{Value: TimeLimit60, Label: "1 час", Minutes: 60},
	{Value: TimeLimit120, Label: "2 часа", Minutes: 120},
	{Value: TimeLimitNone, Label: "Без ограничения", Minutes: 0},
}

// Valid reports whether n is one of QuestionCounts.
func (n QuestionCount) Valid() bool {
	for _, c := range QuestionCounts {
		if c == n {
			return true
		}
	}
	return false
}

// Valid reports whether t is one of TimeLimits.
func (t TimeLimit) Valid() bool {
	for _, opt := range TimeLimits {
		if opt.Value == t {
			return true
		}
	}
	return false
}

// IsUnlimited reports whether the limit is the explicit "no limit" value.
func (t TimeLimit) IsUnlimited() bool {
	return t == TimeLimitNone
}

// Minutes returns the positive minute count of a known limit.
// ok is false for "none" and for values outside TimeLimits.
func (t TimeLimit) Minutes() (minutes int, ok bool) {
	for _, opt := range TimeLimits {
		if opt.Value == t {
			return opt.Minutes, opt.Minutes > 0
		}
	}
	return 0, false
}

// QuizConfig is chosen on the settings screen before a session starts.
type QuizConfig struct {
	QuestionCount     QuestionCount `json:"question_count"`
	TimeLimit         TimeLimit     `json:"time_limit"`
	ShuffleEnabled    bool          `json:"shuffle_enabled"`
	HintsAllowed      bool          `json:"hints_allowed"`
	ShowCorrectAnswer bool          `json:"show_correct_answer"`
}

// DefaultQuizConfig returns the settings a fresh settings screen shows.
func DefaultQuizConfig() QuizConfig {
	return QuizConfig{
		QuestionCount:     QuestionCount50,
		TimeLimit:         TimeLimit120,
		ShuffleEnabled:    true,
		HintsAllowed:      true,
		ShowCorrectAnswer: true,
	}
}

// QuizOptions is the settings screen's choice list.
type QuizOptions struct {
	QuestionCounts []QuestionCount   `json:"question_counts"`
	TimeLimits     []TimeLimitOption `json:"time_limits"`
}

// UpdateSettingsRequest is the payload for changing quiz settings.
// Omitted fields keep their current value.
type UpdateSettingsRequest struct {
	QuestionCount     *int    `json:"question_count" binding:"omitempty,oneof=50 100 200"`
	TimeLimit         *string `json:"time_limit" binding:"omitempty,oneof=30 60 120 none"`
	ShuffleEnabled    *bool   `json:"shuffle_enabled"`
	HintsAllowed      *bool   `json:"hints_allowed"`
	ShowCorrectAnswer *bool   `json:"show_correct_answer"`
}

// Apply returns cfg with the request's fields applied.
func (r UpdateSettingsRequest) Apply(cfg QuizConfig) QuizConfig {
	if r.QuestionCount != nil {
		cfg.QuestionCount = QuestionCount(*r.QuestionCount)
	}
	if r.TimeLimit != nil {
		cfg.TimeLimit = TimeLimit(*r.TimeLimit)
	}
	if r.ShuffleEnabled != nil {
		cfg.ShuffleEnabled = *r.ShuffleEnabled
	}
	if r.HintsAllowed != nil {
		cfg.HintsAllowed = *r.HintsAllowed
	}
	if r.ShowCorrectAnswer != nil {
		cfg.ShowCorrectAnswer = *r.ShowCorrectAnswer
	}
	return cfg
}
