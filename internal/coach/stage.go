package coach

// Stage is the coarse conversation phase that picks which kind of
// question comes next.
type Stage string

const (
	StageInitial Stage = "initial"
	StageMiddle  Stage = "middle"
	StageLate    Stage = "late"
)

// StageFor maps the number of exchanges so far onto a stage: 0-1 initial,
// 2-3 middle, 4 and up late.
func StageFor(messageCount int) Stage {
	switch {
	case messageCount <= 1:
		return StageInitial
	case messageCount <= 3:
		return StageMiddle
	default:
		return StageLate
	}
}

// Guidance describes the question category for the stage.
func (s Stage) Guidance() string {
	switch s {
	case StageMiddle:
		return "shift perspective and dig deeper into causes"
	case StageLate:
		return "focus on actions and lessons to carry forward"
	default:
		return "explore the background and the concrete situation"
	}
}
