package contracts

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is; every kind aborts the run.
var (
	ErrDataLoad = errors.New("data load failed")
	ErrParse    = errors.New("parse failed")
	ErrModelFit = errors.New("model fit failed")
)

// DataLoadError 소스를 읽을 수 없거나 필수 컬럼이 없음
type DataLoadError struct {
	Source string
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Source, e.Reason)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }

// ParseError 필드 값을 해석할 수 없음
type ParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: parse %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ModelFitError 모델 적합 실패 (수렴 실패 또는 퇴화 입력). 대체 모델 없음.
type ModelFitError struct {
	Model  string
	Reason string
	Err    error
}

func (e *ModelFitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fit %s: %s: %v", e.Model, e.Reason, e.Err)
	}
	return fmt.Sprintf("fit %s: %s", e.Model, e.Reason)
}

func (e *ModelFitError) Unwrap() error { return e.Err }

func (e *ModelFitError) Is(target error) bool { return target == ErrModelFit }
