package level

import "errors"

// Contract violations. Operations returning these leave state untouched.
var (
	ErrTaskNotActive   = errors.New("level: task is not the active task")
	ErrNotStarted      = errors.New("level: level has not been started")
	ErrAlreadyStarted  = errors.New("level: level already started")
	ErrAlreadyFinished = errors.New("level: level already finished")
	ErrLevelActive     = errors.New("level: another level is still running")
	ErrNoLevels        = errors.New("level: course has no levels")
)

// ErrRunOver is returned when a level is started after the run has ended.
var ErrRunOver = errors.New("level: run is over")
