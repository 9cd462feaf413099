package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdmitFromUnassigned(t *testing.T) {
	machine := NewPlacementFSM(StateUnassigned)

	err := machine.Admit(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StateAssigned, machine.Current())
}

func TestAdmitWhileAssigned(t *testing.T) {
	machine := NewPlacementFSM(StateAssigned)

	err := machine.Admit(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateAssigned, machine.Current())
}

func TestTransferWhileAssigned(t *testing.T) {
	machine := NewPlacementFSM(StateAssigned)

	// Transfer keeps the entity assigned; the self-transition is legal
	err := machine.Transfer(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StateAssigned, machine.Current())
}

func TestTransferWhileUnassigned(t *testing.T) {
	machine := NewPlacementFSM(StateUnassigned)

	err := machine.Transfer(context.Background())
	assert.Error(t, err)
}

func TestReleaseLifecycle(t *testing.T) {
	machine := NewPlacementFSM(StateUnassigned)
	ctx := context.Background()

	assert.False(t, machine.CanRelease())
	assert.NoError(t, machine.Admit(ctx))
	assert.True(t, machine.CanRelease())
	assert.NoError(t, machine.Release(ctx))
	assert.Equal(t, StateUnassigned, machine.Current())

	err := machine.Release(ctx)
	assert.Error(t, err)
}
