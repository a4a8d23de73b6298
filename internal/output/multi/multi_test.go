package multi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/logsieve/internal/model"
)

type mockOutput struct {
	digests []model.Digest
	closed  bool
	err     error
}

func (m *mockOutput) Write(_ context.Context, d model.Digest) error {
	m.digests = append(m.digests, d)
	return m.err
}

func (m *mockOutput) Close() error {
	m.closed = true
	return m.err
}

func testDigest(query string) model.Digest {
	return model.Digest{Query: query, TotalLogs: 2, SelectedLogs: 1}
}

func TestFanOutDeliversToAll(t *testing.T) {
	a := &mockOutput{}
	b := &mockOutput{}
	c := &mockOutput{}
	m := New(a, b, c)

	require.NoError(t, m.Write(context.Background(), testDigest("slow checkout")))

	for i, out := range []*mockOutput{a, b, c} {
		require.Len(t, out.digests, 1, "output %d", i)
		assert.Equal(t, "slow checkout", out.digests[0].Query, "output %d", i)
	}
}

func TestErrorDoesNotPreventDelivery(t *testing.T) {
	diskFull := errors.New("disk full")
	failing := &mockOutput{err: diskFull}
	healthy := &mockOutput{}
	m := New(failing, healthy)

	err := m.Write(context.Background(), testDigest("errors"))
	require.ErrorIs(t, err, diskFull)
	assert.Contains(t, err.Error(), "output 0", "the error names the failing output")
	assert.Len(t, failing.digests, 1)
	assert.Len(t, healthy.digests, 1)
}

func TestCloseCollectsErrors(t *testing.T) {
	errA := errors.New("err-a")
	errB := errors.New("err-b")
	a := &mockOutput{err: errA}
	b := &mockOutput{err: errB}
	m := New(a, b)

	err := m.Close()
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.True(t, a.closed, "Close reaches every output even when errors occur")
	assert.True(t, b.closed)
}

func TestNilOutputsIgnored(t *testing.T) {
	inner := &mockOutput{}
	m := New(nil, inner, nil)

	require.Equal(t, 1, m.Len())
	require.NoError(t, m.Write(context.Background(), testDigest("q")))
	require.NoError(t, m.Close())
	assert.Len(t, inner.digests, 1)
	assert.True(t, inner.closed)
}

func TestEmptyMulti(t *testing.T) {
	m := New()
	assert.NoError(t, m.Write(context.Background(), testDigest("q")))
	assert.NoError(t, m.Close())
}
