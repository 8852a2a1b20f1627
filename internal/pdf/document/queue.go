package document

// queue is a FIFO backed by a growable ring buffer
type queue[T any] struct {
	buf  []T
	head int
	size int
}

func newQueue[T any](capacity int) *queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &queue[T]{buf: make([]T, capacity)}
}

func (q *queue[T]) push(v T) {
	if q.size == len(q.buf) {
		grown := make([]T, 2*len(q.buf))
		for i := 0; i < q.size; i++ {
			grown[i] = q.buf[(q.head+i)%len(q.buf)]
		}
		q.buf = grown
		q.head = 0
	}
	q.buf[(q.head+q.size)%len(q.buf)] = v
	q.size++
}

func (q *queue[T]) pop() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, true
}

func (q *queue[T]) len() int {
	return q.size
}
