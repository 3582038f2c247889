// Package source отдаёт листинг постранично: HTTP-обход по ссылке "More" или браузер go-rod.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"hn-newest-parser/internal/scraper"
)

// ErrNoMorePages NextPage вызван после того, как источник сообщил об исчерпании
var ErrNoMorePages = errors.New("no more pages")

// Page одна порция строк листинга
type Page struct {
	Rows    []scraper.RawRecord
	HasMore bool
	URL     string
}

// PageSource курсор по страницам листинга
type PageSource interface {
	NextPage(ctx context.Context) (*Page, error)
}

// Session PageSource с ресурсом, который нужно освободить
type Session interface {
	PageSource
	io.Closer
}

// Opener открывает новый независимый проход по листингу
type Opener func(ctx context.Context) (Session, error)

// NavigationError источник не смог перейти на страницу
type NavigationError struct {
	URL  string
	Page int
	Err  error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation failed at page %d (%s): %v", e.Page, e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
