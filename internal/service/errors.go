package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyMatched - обращение уже сопоставлено другим вызовом, делать нечего
	ErrAlreadyMatched = errors.New("report already matched")
	// ErrMatchInProgress - по этому обращению уже идет подбор
	ErrMatchInProgress = errors.New("report matching already in progress")
)

// FetchError - не удалось прочитать обращение, список служб или профили
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("service: could not fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistStage - на каком шаге сохранения произошла ошибка
type PersistStage string

const (
	// StageReportUpdate - обращение осталось несопоставленным, повтор безопасен
	StageReportUpdate PersistStage = "report_update"
	// StageMatchInsert - обращение помечено, но строк Match нет
	StageMatchInsert PersistStage = "match_insert"
)

type PersistenceError struct {
	Stage PersistStage
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("service: persistence failed at %s: %v", e.Stage, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsDanglingMatch сообщает, что обращение помечено сопоставленным без строк Match
func IsDanglingMatch(err error) bool {
	var pErr *PersistenceError
	return errors.As(err, &pErr) && pErr.Stage == StageMatchInsert
}
