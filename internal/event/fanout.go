package event

import "sync"

// Fanout delivers each event to every registered observer in registration
// order. Delivery is synchronous: a method returns only after all observers
// ran. With no observers every delivery is a no-op.
//
// Register is safe to call concurrently with delivery.
type Fanout struct {
	mu        sync.RWMutex
	observers []RoomObserver
}

// NewFanout creates an empty Fanout.
func NewFanout() *Fanout {
	return &Fanout{}
}

// Register appends an observer. Observers cannot be removed; rooms live
// shorter than their subscribers.
//
// Precondition: obs must be non-nil.
func (f *Fanout) Register(obs RoomObserver) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, obs)
}

func (f *Fanout) snapshot() []RoomObserver {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]RoomObserver(nil), f.observers...)
}

// OnRoomUpdated delivers e to all observers.
func (f *Fanout) OnRoomUpdated(e RoomUpdated) {
	for _, obs := range f.snapshot() {
		obs.OnRoomUpdated(e)
	}
}

// OnGameStarted delivers e to all observers.
func (f *Fanout) OnGameStarted(e GameStarted) {
	for _, obs := range f.snapshot() {
		obs.OnGameStarted(e)
	}
}

// OnGameUpdated delivers e to all observers.
func (f *Fanout) OnGameUpdated(e GameUpdated) {
	for _, obs := range f.snapshot() {
		obs.OnGameUpdated(e)
	}
}

// OnGameEnded delivers e to all observers.
func (f *Fanout) OnGameEnded(e GameEnded) {
	for _, obs := range f.snapshot() {
		obs.OnGameEnded(e)
	}
}

// OnChatPosted delivers e to all observers.
func (f *Fanout) OnChatPosted(e ChatPosted) {
	for _, obs := range f.snapshot() {
		obs.OnChatPosted(e)
	}
}

// OnRoomClosed delivers e to all observers.
func (f *Fanout) OnRoomClosed(e RoomClosed) {
	for _, obs := range f.snapshot() {
		obs.OnRoomClosed(e)
	}
}
