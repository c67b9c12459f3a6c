package buffer

// Unbounded creates a channel buffer that grows as needed.
// It returns a write-only channel to feed data in, and a read-only channel to read data out.
//
// initialCap: The starting size of the backing slice.
// hardLimit: The maximum number of items to buffer before dropping the oldest.
// onDrop: Called with the dropped item when hardLimit is hit; may be nil.
//
// Closing the input flushes what is queued and then closes the output.
// Closing done stops the buffer right away: queued items are discarded,
// the output is left open and later sends to the input block, so writers
// should select on done as well.
//
// Usage:
//
//	in, out := buffer.Unbounded[event.Event](done, 64, 10000, nil)
//	in <- ev
//	ev := <-out
func Unbounded[T any](done <-chan struct{}, initialCap, hardLimit int, onDrop func(T)) (chan<- T, <-chan T) {
	in := make(chan T, 16)
	out := make(chan T, 16)

	go func() {
		queue := make([]T, 0, initialCap)

		for {
			var next T
			var downstream chan T

			// Enable the send case only when there is something to send.
			if len(queue) > 0 {
				next = queue[0]
				downstream = out
			}

			select {
			case val, ok := <-in:
				if !ok {
					defer close(out)
					for _, item := range queue {
						select {
						case out <- item:
						case <-done:
							return
						}
					}
					return
				}

				if len(queue) >= hardLimit {
					if onDrop != nil {
						onDrop(queue[0])
					}
					queue = queue[1:]
				}
				queue = append(queue, val)

			case downstream <- next:
				queue = queue[1:]

			case <-done:
				return
			}
		}
	}()

	return in, out
}
