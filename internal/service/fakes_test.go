package service

import (
	"context"
	"sort"
	"sync"

	"github.com/Freeeeeet/tutor_clinic/internal/model"
	"github.com/google/uuid"
)

// memSlotStore хранилище в памяти с теми же условными семантиками, что и postgres
type memSlotStore struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*model.SessionSlot

	queries int

	// batchErr применяется после проверки всех обновлений, до записи
	batchErr error
	// beforeWrite вызывается перед условной записью, имитирует параллельного пользователя
	beforeWrite func(s *memSlotStore)
	// afterQuery вызывается после чтения диапазона, до возврата результата
	afterQuery func()
}

func newMemSlotStore() *memSlotStore {
	return &memSlotStore{slots: make(map[uuid.UUID]*model.SessionSlot)}
}

func (m *memSlotStore) put(slot *model.SessionSlot) *model.SessionSlot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	if slot.FeedbackStatus == "" {
		slot.FeedbackStatus = model.FeedbackStatusNone
	}
	m.slots[slot.ID] = slot.Clone()
	return slot
}

func (m *memSlotStore) status(id uuid.UUID) (model.SlotStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return "", false
	}
	return s.Status, true
}

// setStatus меняет статус в обход сервиса
func (m *memSlotStore) setStatus(id uuid.UUID, status model.SlotStatus) {
	m.slots[id].Status = status
}

func (m *memSlotStore) sorted(match func(*model.SessionSlot) bool) []*model.SessionSlot {
	var out []*model.SessionSlot
	for _, s := range m.slots {
		if match(s) {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].TAID < out[j].TAID
	})
	return out
}

func (m *memSlotStore) QueryByDateRange(_ context.Context, start, end string) ([]*model.SessionSlot, error) {
	m.mu.Lock()
	m.queries++
	out := m.sorted(func(s *model.SessionSlot) bool {
		return s.Date >= start && s.Date <= end
	})
	fn := m.afterQuery
	m.afterQuery = nil
	m.mu.Unlock()

	if fn != nil {
		fn()
	}
	return out, nil
}

func (m *memSlotStore) QueryByTAAndDateRange(_ context.Context, taID, start, end string) ([]*model.SessionSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries++
	return m.sorted(func(s *model.SessionSlot) bool {
		return s.TAID == taID && s.Date >= start && s.Date <= end
	}), nil
}

func (m *memSlotStore) GetByID(_ context.Context, id uuid.UUID) (*model.SessionSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return s.Clone(), nil
}

func (m *memSlotStore) Create(_ context.Context, slot *model.SessionSlot) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.slots {
		if s.TAID == slot.TAID && s.Date == slot.Date && s.StartTime == slot.StartTime {
			return uuid.Nil, model.ErrConflict
		}
	}
	c := slot.Clone()
	c.ID = uuid.New()
	m.slots[c.ID] = c
	return c.ID, nil
}

func (m *memSlotStore) CreateBatch(ctx context.Context, slots []*model.SessionSlot) (int, error) {
	n := 0
	for _, s := range slots {
		if _, err := m.Create(ctx, s); err != nil {
			continue
		}
		n++
	}
	return n, nil
}

func (m *memSlotStore) check(upd model.SlotUpdate) error {
	s, ok := m.slots[upd.ID]
	if !ok {
		return model.ErrNotFound
	}
	if upd.Expect != "" && s.Status != upd.Expect {
		return model.ErrConflict
	}
	return nil
}

func (m *memSlotStore) hook() {
	if m.beforeWrite != nil {
		fn := m.beforeWrite
		m.beforeWrite = nil
		fn(m)
	}
}

func (m *memSlotStore) Update(_ context.Context, upd model.SlotUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook()
	if err := m.check(upd); err != nil {
		return err
	}
	m.slots[upd.ID] = upd.Patch.Apply(m.slots[upd.ID])
	return nil
}

func (m *memSlotStore) Delete(_ context.Context, id uuid.UUID, expect model.SlotStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook()
	if err := m.check(model.SlotUpdate{ID: id, Expect: expect}); err != nil {
		return err
	}
	delete(m.slots, id)
	return nil
}

func (m *memSlotStore) BatchApply(_ context.Context, updates []model.SlotUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook()
	for _, upd := range updates {
		if err := m.check(upd); err != nil {
			return err
		}
	}
	if m.batchErr != nil {
		return m.batchErr
	}
	for _, upd := range updates {
		m.slots[upd.ID] = upd.Patch.Apply(m.slots[upd.ID])
	}
	return nil
}

type memPayrollStore struct {
	mu      sync.Mutex
	records map[string]*model.PayrollRecord
}

func newMemPayrollStore() *memPayrollStore {
	return &memPayrollStore{records: make(map[string]*model.PayrollRecord)}
}

func (m *memPayrollStore) Get(_ context.Context, userID, yearMonth string) (*model.PayrollRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[model.PayrollKey(userID, yearMonth)]
	if !ok {
		return nil, nil
	}
	c := *rec
	return &c, nil
}

func (m *memPayrollStore) ListByMonth(_ context.Context, yearMonth string) ([]*model.PayrollRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PayrollRecord
	for _, rec := range m.records {
		if rec.YearMonth == yearMonth {
			c := *rec
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *memPayrollStore) Put(_ context.Context, rec *model.PayrollRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *rec
	m.records[rec.Key()] = &c
	return nil
}

type memTemplateStore struct {
	templates []*model.WeeklyTemplate
}

func (m *memTemplateStore) Create(_ context.Context, t *model.WeeklyTemplate) error {
	t.ID = int64(len(m.templates) + 1)
	c := *t
	m.templates = append(m.templates, &c)
	return nil
}

func (m *memTemplateStore) GetAllActive(_ context.Context) ([]*model.WeeklyTemplate, error) {
	var out []*model.WeeklyTemplate
	for _, t := range m.templates {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTemplateStore) GetByTAID(_ context.Context, taID string) ([]*model.WeeklyTemplate, error) {
	var out []*model.WeeklyTemplate
	for _, t := range m.templates {
		if t.TAID == taID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTemplateStore) DeactivateByGroupID(_ context.Context, groupID uuid.UUID) error {
	found := false
	for _, t := range m.templates {
		if t.GroupID == groupID {
			t.IsActive = false
			found = true
		}
	}
	if !found {
		return model.ErrNotFound
	}
	return nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []*model.SessionSlot
	feedback  []*model.SessionSlot
}

func (n *recordingNotifier) SlotConfirmed(_ context.Context, slot *model.SessionSlot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, slot)
}

func (n *recordingNotifier) FeedbackSent(_ context.Context, slot *model.SessionSlot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.feedback = append(n.feedback, slot)
}
