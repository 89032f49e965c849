package domain

import (
	"encoding"
	"errors"
	"fmt"
)

var ErrInvalidStage = errors.New("lesson: invalid stage")

// Stage is a learning mode. The three views are walked in order and end in
// StageCompleted.
type Stage int

const (
	StageVideo Stage = iota + 1
	StageArticle
	StageQuestion
	StageCompleted
)

// Views are the stages a learner can look at, in path order.
var Views = [...]Stage{StageVideo, StageArticle, StageQuestion}

var (
	stageNames  = [...]string{StageVideo: "video", StageArticle: "article", StageQuestion: "question", StageCompleted: "completed"}
	stageByName = map[string]Stage{
		"video":     StageVideo,
		"article":   StageArticle,
		"question":  StageQuestion,
		"completed": StageCompleted,
	}
	stageDisplay = [...]string{StageVideo: "视频学习", StageArticle: "文章精读", StageQuestion: "题目精讲", StageCompleted: "已完成"}
)

var (
	_ fmt.Stringer             = Stage(0)
	_ encoding.TextMarshaler   = Stage(0)
	_ encoding.TextUnmarshaler = (*Stage)(nil)
)

func (s Stage) String() string {
	if s.IsValid() {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

func (s Stage) IsValid() bool { return s >= StageVideo && s <= StageCompleted }

// IsView reports whether s is one of the three viewable stages.
func (s Stage) IsView() bool { return s >= StageVideo && s <= StageQuestion }

func (s Stage) DisplayName() string {
	if s.IsValid() {
		return stageDisplay[s]
	}
	return s.String()
}

// Next is the following stage in path order; StageCompleted is terminal.
func (s Stage) Next() Stage {
	switch s {
	case StageVideo:
		return StageArticle
	case StageArticle:
		return StageQuestion
	default:
		return StageCompleted
	}
}

func (s Stage) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStage, int(s))
	}
	return []byte(stageNames[s]), nil
}

func (s *Stage) UnmarshalText(text []byte) error {
	v, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func ParseStage(name string) (Stage, error) {
	v, ok := stageByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStage, name)
	}
	return v, nil
}
