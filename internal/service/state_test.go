package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	svc, err := NewStateService("test-secret", 10*time.Minute)
	require.NoError(t, err)

	state, attemptID, err := svc.Issue()
	require.NoError(t, err)
	require.NotEmpty(t, state)
	require.NotEmpty(t, attemptID)

	got, err := svc.Verify(state)
	require.NoError(t, err)
	assert.Equal(t, attemptID, got)
}

func TestStateUniquePerIssue(t *testing.T) {
	svc, err := NewStateService("test-secret", 10*time.Minute)
	require.NoError(t, err)

	s1, id1, err := svc.Issue()
	require.NoError(t, err)
	s2, id2, err := svc.Issue()
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
	assert.NotEqual(t, id1, id2)
}

func TestStateRejectsTampering(t *testing.T) {
	svc, err := NewStateService("test-secret", 10*time.Minute)
	require.NoError(t, err)

	state, _, err := svc.Issue()
	require.NoError(t, err)

	_, err = svc.Verify(state + "x")
	assert.Error(t, err)

	_, err = svc.Verify("not-a-token")
	assert.Error(t, err)
}

func TestStateRejectsWrongKey(t *testing.T) {
	issuer, err := NewStateService("secret-one", 10*time.Minute)
	require.NoError(t, err)
	verifier, err := NewStateService("secret-two", 10*time.Minute)
	require.NoError(t, err)

	state, _, err := issuer.Issue()
	require.NoError(t, err)

	_, err = verifier.Verify(state)
	assert.Error(t, err)
}

func TestStateRejectsExpired(t *testing.T) {
	svc, err := NewStateService("test-secret", -1*time.Minute)
	require.NoError(t, err)

	state, _, err := svc.Issue()
	require.NoError(t, err)

	_, err = svc.Verify(state)
	assert.Error(t, err)
}

func TestStateRequiresSecret(t *testing.T) {
	_, err := NewStateService("", 10*time.Minute)
	assert.Error(t, err)
}
