package containers

import "testing"

func TestRingQueue_FIFOOrder(t *testing.T) {
	q := NewRingQueue[int](4)
	for i := 1; i <= 4; i++ {
		if err := q.Enqueue(i); err != nil {
			t.Fatalf("Enqueue(%d) error: %v", i, err)
		}
	}
	for i := 1; i <= 4; i++ {
		v, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue() error: %v", err)
		}
		if v != i {
			t.Errorf("Dequeue() = %d, want %d", v, i)
		}
	}
}

func TestRingQueue_FullAndEmpty(t *testing.T) {
	q := NewRingQueue[string](2)

	if _, err := q.Dequeue(); err != ErrQueueEmpty {
		t.Errorf("Dequeue on empty = %v, want ErrQueueEmpty", err)
	}

	q.Enqueue("a")
	q.Enqueue("b")
	if err := q.Enqueue("c"); err != ErrQueueFull {
		t.Errorf("Enqueue on full = %v, want ErrQueueFull", err)
	}
	if !q.IsFull() {
		t.Error("IsFull() = false on a full queue")
	}
}

func TestRingQueue_WrapsAround(t *testing.T) {
	q := NewRingQueue[int](3)
	q.Enqueue(1)
	q.Enqueue(2)
	q.Dequeue()
	q.Enqueue(3)
	q.Enqueue(4)

	if q.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", q.Len())
	}
	want := []int{2, 3, 4}
	for _, w := range want {
		v, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue() error: %v", err)
		}
		if v != w {
			t.Errorf("Dequeue() = %d, want %d", v, w)
		}
	}
}

func TestRingQueue_Peek(t *testing.T) {
	q := NewRingQueue[int](2)
	q.Enqueue(7)
	v, err := q.Peek()
	if err != nil || v != 7 {
		t.Errorf("Peek() = %d, %v; want 7, nil", v, err)
	}
	if q.Len() != 1 {
		t.Errorf("Peek consumed the element")
	}
}
