package extract

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

// 脚本化的页面：emails中有的图标会在appearAfter次轮询后展开下拉框，没有的图标永远不展开
type fakePage struct {
	doc         *goquery.Document
	emails      map[int]string
	appearAfter int
	stuck       bool
	fallback    string

	failActivate error
	panicOnHide  bool

	active   int
	polls    int
	inFlight int
	overlaps int
	calls    []string
}

func newFakePage(t *testing.T, html string) *fakePage {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return &fakePage{doc: doc, emails: map[int]string{}, active: -1}
}

func (f *fakePage) Snapshot(ctx context.Context) (*goquery.Document, error) {
	return f.doc, ctx.Err()
}

func (f *fakePage) HideDropdowns(ctx context.Context) error {
	if f.panicOnHide {
		panic("dropdown wrapper vanished")
	}
	f.inFlight++
	if f.inFlight > 1 {
		f.overlaps++
	}
	f.calls = append(f.calls, "hide")
	f.active = -1
	return nil
}

func (f *fakePage) Activate(ctx context.Context, icon int) error {
	f.calls = append(f.calls, fmt.Sprintf("activate:%d", icon))
	if f.failActivate != nil {
		return f.failActivate
	}
	f.active = icon
	f.polls = 0
	return nil
}

func (f *fakePage) DropdownEmail(ctx context.Context) (string, bool, error) {
	f.polls++
	if f.active < 0 {
		return "", false, nil
	}
	email, ok := f.emails[f.active]
	if !ok || f.polls <= f.appearAfter {
		return "", false, nil
	}
	return email, true, nil
}

func (f *fakePage) VisibleMailto(ctx context.Context) (string, error) {
	f.calls = append(f.calls, "fallback")
	return f.fallback, nil
}

func (f *fakePage) Dismiss(ctx context.Context) error {
	f.calls = append(f.calls, "dismiss")
	f.inFlight--
	if !f.stuck {
		f.active = -1
	}
	return nil
}

func (f *fakePage) DropdownOpen(ctx context.Context) (bool, error) {
	if f.active < 0 {
		return false, nil
	}
	_, ok := f.emails[f.active]
	return ok, nil
}
