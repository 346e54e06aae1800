package buffer

type observer struct {
	id int
	fn func(Change)
}

// Subscribe registers fn to receive every committed Change, synchronously and
// in registration order, after the buffer state has been updated. The
// returned func removes the registration.
func (b *Buffer) Subscribe(fn func(Change)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	b.nextObsID++
	id := b.nextObsID
	b.observers = append(b.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range b.observers {
			if o.id == id {
				b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
				return
			}
		}
	}
}

func (b *Buffer) notify(c Change) {
	if len(b.observers) == 0 {
		return
	}
	// Registrations made during delivery see the next change, not this one.
	obs := append([]observer(nil), b.observers...)
	for _, o := range obs {
		o.fn(cloneChange(c))
	}
}
