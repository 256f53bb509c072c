package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"matchfoundry/internal/meeting"
	"matchfoundry/internal/utils"
	"matchfoundry/pkg/types"

	"github.com/sirupsen/logrus"
)

// memStore is an in-memory Store with the same transition guarantees the
// Postgres repository enforces: ApplySelection is atomic and rejects a chat
// that already left the proposed state.
type memStore struct {
	mu    sync.Mutex
	chats map[string]*types.CoffeeChat
	slots map[string]*types.ProposedSlot
}

func newMemStore() *memStore {
	return &memStore{
		chats: make(map[string]*types.CoffeeChat),
		slots: make(map[string]*types.ProposedSlot),
	}
}

func (m *memStore) CreateChat(_ context.Context, chat *types.CoffeeChat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat.ID = utils.NanoID()
	chat.CreatedAt = time.Now()
	chat.UpdatedAt = chat.CreatedAt
	clone := *chat
	m.chats[chat.ID] = &clone
	return nil
}

func (m *memStore) Chat(_ context.Context, chatID string) (*types.CoffeeChat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat, ok := m.chats[chatID]
	if !ok {
		return nil, types.ErrChatNotFound
	}
	clone := *chat
	return &clone, nil
}

func (m *memStore) Slot(_ context.Context, slotID string) (*types.ProposedSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.slots[slotID]
	if !ok {
		return nil, types.ErrSlotNotFound
	}
	clone := *slot
	return &clone, nil
}

func (m *memStore) SlotsByChat(_ context.Context, chatID string) ([]*types.ProposedSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*types.ProposedSlot
	for _, slot := range m.slots {
		if slot.CoffeeChatID == chatID {
			clone := *slot
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memStore) AddSlots(_ context.Context, slots []*types.ProposedSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, slot := range slots {
		slot.ID = utils.NanoID()
		slot.CreatedAt = time.Now()
		clone := *slot
		m.slots[slot.ID] = &clone
	}
	return nil
}

func (m *memStore) ApplySelection(_ context.Context, sel *Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat, ok := m.chats[sel.ChatID]
	if !ok {
		return types.ErrChatNotFound
	}
	if chat.Status != types.ChatStatusProposed {
		return types.ErrChatAlreadyScheduled
	}

	chat.Status = types.ChatStatusScheduled
	chat.ChosenSlotID = utils.StringPtr(sel.SlotID)
	chat.MeetingLink = utils.StringPtr(sel.MeetingLink)
	chat.UpdatedAt = time.Now()

	m.slots[sel.SlotID].Status = types.SlotStatusSelected
	for _, id := range sel.ExpiredSlotIDs {
		m.slots[id].Status = types.SlotStatusExpired
	}
	return nil
}

func newTestService(store Store) *Service {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewService(store, meeting.NewGenerator(""), logger)
}

func slotInputs(n int) []SlotInput {
	base := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	inputs := make([]SlotInput, 0, n)
	for i := 0; i < n; i++ {
		start := base.Add(time.Duration(i) * 24 * time.Hour)
		inputs = append(inputs, SlotInput{StartTime: start, EndTime: start.Add(30 * time.Minute)})
	}
	return inputs
}

func TestCreateValidatesIDs(t *testing.T) {
	svc := newTestService(newMemStore())

	cases := []struct {
		name                          string
		needID, requesterID, expertID string
	}{
		{"missing need", "", "alice", "bob"},
		{"missing requester", "n1", "", "bob"},
		{"missing expert", "n1", "alice", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.needID, tc.requesterID, tc.expertID)
			if !errors.Is(err, types.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreateProducesDistinctChats(t *testing.T) {
	svc := newTestService(newMemStore())

	first, err := svc.Create(context.Background(), "n1", "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Create(context.Background(), "n1", "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}

	if first.ID == second.ID {
		t.Error("repeated create returned the same chat id")
	}
	if first.Status != types.ChatStatusProposed || second.Status != types.ChatStatusProposed {
		t.Error("new chats must start in the proposed state")
	}
	if first.ChosenSlotID != nil || first.MeetingLink != nil {
		t.Error("new chat must have no chosen slot and no meeting link")
	}
}

func TestProposeSlotsValidation(t *testing.T) {
	svc := newTestService(newMemStore())

	if _, err := svc.ProposeSlots(context.Background(), "", slotInputs(1)); !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("missing chat id: err = %v, want ErrInvalidInput", err)
	}

	chat, err := svc.Create(context.Background(), "n1", "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ProposeSlots(context.Background(), chat.ID, nil); !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("empty slots: err = %v, want ErrInvalidInput", err)
	}

	start := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	inverted := []SlotInput{{StartTime: start, EndTime: start.Add(-time.Hour)}}
	if _, err := svc.ProposeSlots(context.Background(), chat.ID, inverted); !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("inverted slot: err = %v, want ErrInvalidInput", err)
	}
}

func TestProposeSlotsUnknownChat(t *testing.T) {
	svc := newTestService(newMemStore())

	_, err := svc.ProposeSlots(context.Background(), "missing", slotInputs(2))
	if !errors.Is(err, types.ErrChatNotFound) {
		t.Errorf("err = %v, want ErrChatNotFound", err)
	}
}

func TestProposeSlotsAccumulate(t *testing.T) {
	// Pins the accumulation behavior: repeated proposals append, they do not
	// replace.
	svc := newTestService(newMemStore())

	chat, err := svc.Create(context.Background(), "n1", "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.ProposeSlots(context.Background(), chat.ID, slotInputs(2))
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Slots) != 2 {
		t.Fatalf("after first proposal: %d slots, want 2", len(updated.Slots))
	}

	updated, err = svc.ProposeSlots(context.Background(), chat.ID, slotInputs(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Slots) != 3 {
		t.Fatalf("after second proposal: %d slots, want 3", len(updated.Slots))
	}

	if updated.Status != types.ChatStatusProposed {
		t.Errorf("proposing slots must not change chat status, got %s", updated.Status)
	}
	for _, slot := range updated.Slots {
		if slot.Status != types.SlotStatusPending {
			t.Errorf("slot %s status = %s, want pending", slot.ID, slot.Status)
		}
	}
}

func TestSelectSlotHappyPath(t *testing.T) {
	svc := newTestService(newMemStore())

	chat, err := svc.Create(context.Background(), "n1", "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	proposed, err := svc.ProposeSlots(context.Background(), chat.ID, slotInputs(3))
	if err != nil {
		t.Fatal(err)
	}

	chosen := proposed.Slots[1]

	scheduled, err := svc.SelectSlot(context.Background(), chat.ID, chosen.ID)
	if err != nil {
		t.Fatal(err)
	}

	if scheduled.Status != types.ChatStatusScheduled {
		t.Errorf("chat status = %s, want scheduled", scheduled.Status)
	}
	if scheduled.ChosenSlotID == nil || *scheduled.ChosenSlotID != chosen.ID {
		t.Errorf("chosenSlotId = %v, want %s", scheduled.ChosenSlotID, chosen.ID)
	}
	if scheduled.MeetingLink == nil || *scheduled.MeetingLink == "" {
		t.Fatal("meeting link must be set")
	}
	wantLink := fmt.Sprintf("https://meet.jit.si/matchfoundry-%s", chat.ID)
	if *scheduled.MeetingLink != wantLink {
		t.Errorf("meeting link = %s, want %s", *scheduled.MeetingLink, wantLink)
	}

	selected := 0
	for _, slot := range scheduled.Slots {
		switch {
		case slot.ID == chosen.ID:
			if slot.Status != types.SlotStatusSelected {
				t.Errorf("chosen slot status = %s, want selected", slot.Status)
			}
			selected++
		case slot.Status != types.SlotStatusExpired:
			t.Errorf("slot %s status = %s, want expired", slot.ID, slot.Status)
		}
	}
	if selected != 1 {
		t.Errorf("exactly one slot must be selected, got %d", selected)
	}

	// Repeated reads return the same link.
	again, err := svc.ChatWithSlots(context.Background(), chat.ID)
	if err != nil {
		t.Fatal(err)
	}
	if *again.MeetingLink != wantLink {
		t.Errorf("meeting link changed across reads: %s", *again.MeetingLink)
	}
}

func TestSelectSlotNotFound(t *testing.T) {
	svc := newTestService(newMemStore())

	chat, err := svc.Create(context.Background(), "n1", "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ProposeSlots(context.Background(), chat.ID, slotInputs(1)); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SelectSlot(context.Background(), "missing", "whatever"); !errors.Is(err, types.ErrChatNotFound) {
		t.Errorf("unknown chat: err = %v, want ErrChatNotFound", err)
	}
	if _, err := svc.SelectSlot(context.Background(), chat.ID, "missing"); !errors.Is(err, types.ErrSlotNotFound) {
		t.Errorf("unknown slot: err = %v, want ErrSlotNotFound", err)
	}
}

func TestSelectSlotRejectsForeignSlot(t *testing.T) {
	svc := newTestService(newMemStore())

	first, err := svc.Create(context.Background(), "n1", "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Create(context.Background(), "n2", "carla", "bob")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.ProposeSlots(context.Background(), first.ID, slotInputs(1)); err != nil {
		t.Fatal(err)
	}
	other, err := svc.ProposeSlots(context.Background(), second.ID, slotInputs(1))
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.SelectSlot(context.Background(), first.ID, other.Slots[0].ID)
	if !errors.Is(err, types.ErrSlotWrongChat) {
		t.Errorf("err = %v, want ErrSlotWrongChat", err)
	}

	// The foreign selection must not have touched either chat.
	reloaded, err := svc.ChatWithSlots(context.Background(), first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Status != types.ChatStatusProposed {
		t.Errorf("chat status = %s, want proposed", reloaded.Status)
	}
}

func TestSelectSlotSecondSelectConflicts(t *testing.T) {
	svc := newTestService(newMemStore())

	chat, err := svc.Create(context.Background(), "n1", "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	proposed, err := svc.ProposeSlots(context.Background(), chat.ID, slotInputs(2))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SelectSlot(context.Background(), chat.ID, proposed.Slots[0].ID); err != nil {
		t.Fatal(err)
	}

	_, err = svc.SelectSlot(context.Background(), chat.ID, proposed.Slots[1].ID)
	if !errors.Is(err, types.ErrChatAlreadyScheduled) {
		t.Errorf("err = %v, want ErrChatAlreadyScheduled", err)
	}
}

func TestSelectSlotConcurrentSingleWinner(t *testing.T) {
	svc := newTestService(newMemStore())

	chat, err := svc.Create(context.Background(), "n1", "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	proposed, err := svc.ProposeSlots(context.Background(), chat.ID, slotInputs(4))
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(proposed.Slots))
	for i, slot := range proposed.Slots {
		wg.Add(1)
		go func(i int, slotID string) {
			defer wg.Done()
			_, errs[i] = svc.SelectSlot(context.Background(), chat.ID, slotID)
		}(i, slot.ID)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, types.ErrChatAlreadyScheduled):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("concurrent selects: %d winners, want exactly 1", wins)
	}

	final, err := svc.ChatWithSlots(context.Background(), chat.ID)
	if err != nil {
		t.Fatal(err)
	}
	selected := 0
	for _, slot := range final.Slots {
		if slot.Status == types.SlotStatusSelected {
			selected++
		}
	}
	if selected != 1 {
		t.Errorf("exactly one slot must end selected, got %d", selected)
	}
}
