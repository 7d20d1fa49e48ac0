package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/dszqbsm/pocextractor/page"
	"github.com/dszqbsm/pocextractor/poc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingRenderer struct {
	got []poc.Result
	err error
}

func (r *recordingRenderer) Render(res poc.Result) error {
	r.got = append(r.got, res)
	return r.err
}

func TestExtractTraxcn(t *testing.T) {
	f := newFakePage(t, traxcnProfile)
	// 图标序号按文档顺序：Jane 0，Big Fund 1（不在白名单分区），Ann 2
	f.emails = map[int]string{0: "jane@acme.io", 1: "fund@vc.io", 2: "ann@acme.io"}
	f.appearAfter = 2

	rr := &recordingRenderer{}
	e := New(WithLogger(zap.NewNop()), WithRevealConfig(fastReveal()), WithRenderers(rr))
	res, run, err := e.Extract(context.Background(), poc.Traxcn, f)
	require.NoError(t, err)

	want := []poc.Record{
		{Role: "Co-Founder & CEO", Name: "Jane Doe", Email: "jane@acme.io"},
		{Role: "", Name: "John Roe", Email: ""},
		{Role: `VP "Ops"`, Name: "Ann Lee", Email: "ann@acme.io"},
	}
	assert.Equal(t, want, res.Records)
	assert.Equal(t, "Traxcn", res.Label())
	assert.Equal(t, run.ID, res.RunID)
	assert.Equal(t, []string{"hide", "activate:0", "dismiss", "hide", "activate:2", "dismiss"}, f.calls)

	require.Len(t, rr.got, 1)
	assert.Equal(t, res, rr.got[0])

	assert.Equal(t, Done, run.State())
	assert.Equal(t, []State{
		Idle, Locating,
		ExtractingRow, RevealingEmail, Waiting,
		ExtractingRow,
		ExtractingRow,
		ExtractingRow, RevealingEmail, Waiting,
		Assembled, Done,
	}, run.History())
}

func TestExtractTraxcnStaticSnapshot(t *testing.T) {
	html := strings.Replace(traxcnProfile,
		`CEO <span class="fa fa-envelope"></span></div>`,
		`CEO <span class="fa fa-envelope"></span>
<div class="listDropdown__wrapper"><a href="mailto:jane@acme.io">jane@acme.io</a></div></div>`, 1)
	doc, err := page.Load(strings.NewReader(html))
	require.NoError(t, err)

	e := New(WithRevealConfig(fastReveal()))
	res, _, err := e.Extract(context.Background(), poc.Traxcn, page.NewStatic(doc))
	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "Jane Doe", res.Records[0].Name)
	assert.Equal(t, "jane@acme.io", res.Records[0].Email)
	assert.Empty(t, res.Records[2].Email)
}

func TestExtractNoSections(t *testing.T) {
	f := newFakePage(t, `<html><body><div class="txn--dp-subheader">Funding</div></body></html>`)
	res, run, err := New().Extract(context.Background(), poc.Traxcn, f)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, f.calls)
	assert.Equal(t, Done, run.State())
}

func TestExtractApollo(t *testing.T) {
	f := newFakePage(t, apolloList)
	res, run, err := New().Extract(context.Background(), poc.Apollo, f)
	require.NoError(t, err)
	assert.Equal(t, "Apollo", res.Label())
	assert.Equal(t, []poc.Record{
		{Role: "Chief&Officer", Name: "Ann Smith", Email: "ann@acme.io"},
		{Role: "VP&Sales", Name: "Bob Jones"},
	}, res.Records)
	assert.Empty(t, f.calls)
	assert.Equal(t, []State{Idle, Locating, Assembled, Done}, run.History())
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(f *fakePage)
		render error
		ctx    func() context.Context
	}{
		{
			name:  "activate fails",
			setup: func(f *fakePage) { f.failActivate = assert.AnError },
		},
		{
			name:  "panic during reveal",
			setup: func(f *fakePage) { f.panicOnHide = true },
		},
		{
			name:   "renderer fails",
			render: assert.AnError,
		},
		{
			name: "cancelled",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakePage(t, traxcnProfile)
			f.emails = map[int]string{0: "jane@acme.io", 2: "ann@acme.io"}
			if tt.setup != nil {
				tt.setup(f)
			}
			ctx := context.Background()
			if tt.ctx != nil {
				ctx = tt.ctx()
			}

			e := New(WithRevealConfig(fastReveal()), WithRenderers(&recordingRenderer{err: tt.render}))
			res, run, err := e.Extract(ctx, poc.Traxcn, f)
			assert.ErrorIs(t, err, ErrRunFailed)
			assert.Empty(t, res.Records)
			require.NotNil(t, run)
			assert.Equal(t, Failed, run.State())
		})
	}
}

func TestExtractUnknownPlatform(t *testing.T) {
	f := newFakePage(t, traxcnProfile)
	_, run, err := New().Extract(context.Background(), poc.Platform("linkedin"), f)
	assert.ErrorIs(t, err, poc.ErrUnknownPlatform)
	assert.Nil(t, run)
}

func TestExtractCustomStrategyStore(t *testing.T) {
	store := &strategyStore{Hash: map[poc.Platform]Strategy{}}
	store.Add(poc.Apollo, TraxcnStrategy{})

	f := newFakePage(t, traxcnProfile)
	_, _, err := New(withStrategies(store)).Extract(context.Background(), poc.Traxcn, f)
	assert.ErrorIs(t, err, poc.ErrUnknownPlatform)
}

func TestFailureMessage(t *testing.T) {
	assert.Equal(t,
		"An error occurred during Apollo extraction: boom",
		FailureMessage(poc.Apollo, assertErr("boom")))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func TestAssemble(t *testing.T) {
	a := []poc.Record{{Name: "a"}, {Name: "b"}}
	b := []poc.Record{{Name: "c"}}
	assert.Equal(t, []poc.Record{{Name: "a"}, {Name: "b"}, {Name: "c"}}, Assemble(a, nil, b))
	assert.NotNil(t, Assemble())
	assert.Empty(t, Assemble())
}

func TestStrategyStore(t *testing.T) {
	assert.Equal(t, []poc.Platform{poc.Traxcn, poc.Apollo}, Strategies.List)
	for _, p := range poc.Platforms() {
		_, err := Strategies.Get(p)
		assert.NoError(t, err)
	}
}
