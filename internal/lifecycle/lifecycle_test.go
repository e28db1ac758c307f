package lifecycle

import (
	"testing"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotIn(status model.SlotStatus) *model.SessionSlot {
	return &model.SessionSlot{
		TAID:           "ta-1",
		Date:           "2025-03-10",
		StartTime:      "10:00",
		EndTime:        "11:00",
		Status:         status,
		FeedbackStatus: model.FeedbackStatusNone,
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name       string
		from       model.SlotStatus
		action     Action
		in         Input
		wantStatus model.SlotStatus
		wantDelete bool
		wantNotify Notification
	}{
		{
			name:       "claim open",
			from:       model.SlotStatusOpen,
			action:     ActionClaim,
			in:         Input{Student: Student{Name: "Kim", Topic: "algebra"}},
			wantStatus: model.SlotStatusPending,
		},
		{
			name:       "approve pending with classroom",
			from:       model.SlotStatusPending,
			action:     ActionApprove,
			in:         Input{Classroom: "R101"},
			wantStatus: model.SlotStatusConfirmed,
			wantNotify: NotifyConfirmed,
		},
		{
			name:       "reset pending",
			from:       model.SlotStatusPending,
			action:     ActionReset,
			wantStatus: model.SlotStatusOpen,
		},
		{
			name:       "request cancellation",
			from:       model.SlotStatusOpen,
			action:     ActionRequestCancellation,
			in:         Input{CancelReason: "sick"},
			wantStatus: model.SlotStatusCancellationRequested,
		},
		{
			name:       "withdraw cancellation",
			from:       model.SlotStatusCancellationRequested,
			action:     ActionWithdraw,
			wantStatus: model.SlotStatusOpen,
		},
		{
			name:       "approve cancellation deletes",
			from:       model.SlotStatusCancellationRequested,
			action:     ActionApprove,
			wantDelete: true,
		},
		{
			name:       "approve addition opens",
			from:       model.SlotStatusAdditionRequested,
			action:     ActionApprove,
			wantStatus: model.SlotStatusOpen,
		},
		{
			name:       "withdraw addition deletes",
			from:       model.SlotStatusAdditionRequested,
			action:     ActionWithdraw,
			wantDelete: true,
		},
		{
			name:       "feedback on confirmed completes",
			from:       model.SlotStatusConfirmed,
			action:     ActionSubmitFeedback,
			in:         Input{Feedback: "good progress"},
			wantStatus: model.SlotStatusCompleted,
		},
		{
			name:       "delete anything",
			from:       model.SlotStatusCompleted,
			action:     ActionDelete,
			wantDelete: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Transition(slotIn(tt.from), tt.action, tt.in)
			require.NoError(t, err)

			assert.Equal(t, tt.wantDelete, out.Delete)
			assert.Equal(t, tt.wantNotify, out.Notify)
			if !tt.wantDelete {
				require.NotNil(t, out.Patch.Status)
				assert.Equal(t, tt.wantStatus, *out.Patch.Status)
			}
		})
	}
}

func TestTransitionRejectsUnknownMoves(t *testing.T) {
	tests := []struct {
		from   model.SlotStatus
		action Action
	}{
		{from: model.SlotStatusConfirmed, action: ActionApprove},
		{from: model.SlotStatusPending, action: ActionClaim},
		{from: model.SlotStatusOpen, action: ActionWithdraw},
		{from: model.SlotStatusConfirmed, action: ActionRequestCancellation},
		{from: model.SlotStatusOpen, action: ActionSubmitFeedback},
		{from: model.SlotStatusConfirmed, action: ActionSendFeedback},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.action), func(t *testing.T) {
			_, err := Transition(slotIn(tt.from), tt.action, Input{Classroom: "R1", Feedback: "x"})
			require.ErrorIs(t, err, model.ErrInvalidTransition)

			var te *model.InvalidTransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.from, te.From)
			assert.Equal(t, string(tt.action), te.Action)
		})
	}
}

func TestApproveRequiresClassroom(t *testing.T) {
	_, err := Transition(slotIn(model.SlotStatusPending), ActionApprove, Input{})
	assert.ErrorIs(t, err, model.ErrPreconditionFailed)

	slot := slotIn(model.SlotStatusPending)
	slot.Classroom = "R202"
	out, err := Transition(slot, ActionApprove, Input{})
	require.NoError(t, err)
	assert.Equal(t, "R202", *out.Patch.Classroom)
}

func TestPreconditions(t *testing.T) {
	_, err := Transition(slotIn(model.SlotStatusOpen), ActionRequestCancellation, Input{CancelReason: "  "})
	assert.ErrorIs(t, err, model.ErrPreconditionFailed)

	_, err = Transition(slotIn(model.SlotStatusOpen), ActionClaim, Input{})
	assert.ErrorIs(t, err, model.ErrPreconditionFailed)

	_, err = Transition(slotIn(model.SlotStatusCompleted), ActionSubmitFeedback, Input{})
	assert.ErrorIs(t, err, model.ErrPreconditionFailed)
}

func TestResetClearsStudentFields(t *testing.T) {
	slot := slotIn(model.SlotStatusPending)
	slot.StudentName = "Kim"
	slot.Topic = "algebra"
	slot.Classroom = "R1"

	out, err := Transition(slot, ActionReset, Input{})
	require.NoError(t, err)

	after := out.Patch.Apply(slot)
	assert.Equal(t, model.SlotStatusOpen, after.Status)
	assert.Empty(t, after.StudentName)
	assert.Empty(t, after.Topic)
	assert.Empty(t, after.Classroom)
}

func TestSendFeedback(t *testing.T) {
	slot := slotIn(model.SlotStatusCompleted)
	slot.FeedbackStatus = model.FeedbackStatusSubmitted

	out, err := Transition(slot, ActionSendFeedback, Input{})
	require.NoError(t, err)
	assert.Equal(t, NotifyFeedback, out.Notify)
	assert.Equal(t, model.FeedbackStatusSent, *out.Patch.FeedbackStatus)
	assert.Nil(t, out.Patch.Status)

	slot.FeedbackStatus = model.FeedbackStatusSent
	_, err = Transition(slot, ActionSubmitFeedback, Input{Feedback: "again"})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestEditRecomputesStatus(t *testing.T) {
	slot := slotIn(model.SlotStatusAdditionRequested)

	out, err := Transition(slot, ActionEdit, Input{Edit: model.SlotPatch{
		StudentName: model.Ptr("Lee"),
		Status:      model.Ptr(model.SlotStatusPending),
	}})
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusConfirmed, *out.Patch.Status)
	assert.Equal(t, NotifyConfirmed, out.Notify)

	slot = slotIn(model.SlotStatusConfirmed)
	slot.StudentName = "Lee"
	out, err = Transition(slot, ActionEdit, Input{Edit: model.SlotPatch{StudentName: model.Ptr("")}})
	require.NoError(t, err)
	assert.Equal(t, model.SlotStatusOpen, *out.Patch.Status)
	assert.Equal(t, NotifyNone, out.Notify)
}

func TestAllowedActions(t *testing.T) {
	open := slotIn(model.SlotStatusOpen)
	pending := slotIn(model.SlotStatusPending)

	assert.Equal(t, []Action{ActionClaim}, AllowedActions(model.RoleStudent, open))
	assert.Empty(t, AllowedActions(model.RoleStudent, pending))
	assert.Equal(t, []Action{ActionRequestCancellation}, AllowedActions(model.RoleTA, open))
	assert.Equal(t, []Action{ActionApprove, ActionReset, ActionEdit, ActionDelete}, AllowedActions(model.RoleAdmin, pending))
	assert.Empty(t, AllowedActions(model.RoleParent, open))
	assert.Empty(t, AllowedActions(model.RoleLecturer, pending))

	confirmed := slotIn(model.SlotStatusConfirmed)
	assert.Equal(t, []Action{ActionSubmitFeedback}, AllowedActions(model.RoleTA, confirmed))
	assert.Equal(t, []Action{ActionEdit, ActionDelete}, AllowedActions(model.RoleAdmin, confirmed))
}
