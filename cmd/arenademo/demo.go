package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pavanmanishd/arena/v2"
	"github.com/pavanmanishd/arena/v2/queue"
)

type person struct {
	Name   [24]byte
	Age    int32
	Salary float64
}

func newPerson(name string, age int32, salary float64) person {
	p := person{Age: age, Salary: salary}
	copy(p.Name[:], name)
	return p
}

func (p person) name() string {
	return string(bytes.TrimRight(p.Name[:], "\x00"))
}

func (p person) String() string {
	return fmt.Sprintf("%-20s age %3d  salary %10.2f", p.name(), p.Age, p.Salary)
}

type demo struct {
	out    io.Writer
	cfg    arena.Config
	logger log.Logger
	reg    prometheus.Registerer
}

func (d *demo) run() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"ints", d.ints},
		{"people", d.people},
		{"copy_move", d.copyMove},
		{"reuse", d.reuse},
		{"exhaustion", d.exhaustion},
	}
	for _, s := range steps {
		level.Debug(d.logger).Log("msg", "running step", "step", s.name)
		if err := s.fn(); err != nil {
			return errors.Wrap(err, s.name)
		}
	}
	return nil
}

func (d *demo) ints() error {
	d.section(fmt.Sprintf("Queue of int on a %s arena", d.cfg.Capacity.HumanReadable()))
	a, err := d.newArena("ints", 0)
	if err != nil {
		return err
	}
	defer d.release(a)

	q, err := queue.New[int](a)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "empty: %t, size: %d\n", q.Empty(), q.Len())

	for i := 1; i <= 5; i++ {
		if err := q.Push(i * 10); err != nil {
			return err
		}
		fmt.Fprintf(d.out, "pushed %d, size %d\n", i*10, q.Len())
	}

	front, err := q.Front()
	if err != nil {
		return err
	}
	back, err := q.Back()
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "front: %d, back: %d\n", *front, *back)

	var parts []string
	for it, end := q.Begin(), q.End(); !it.Equal(end); it.Next() {
		v, err := it.Value()
		if err != nil {
			return err
		}
		parts = append(parts, fmt.Sprint(*v))
	}
	fmt.Fprintf(d.out, "iterator: %s\n", strings.Join(parts, " "))
	d.printStats(a)

	for !q.Empty() {
		v, err := q.Pop()
		if err != nil {
			return err
		}
		fmt.Fprintf(d.out, "popped %d, size %d\n", v, q.Len())
	}
	d.printStats(a)
	return nil
}

func (d *demo) people() error {
	d.section("Queue of structs")
	a, err := d.newArena("people", 0)
	if err != nil {
		return err
	}
	defer d.release(a)

	q, err := queue.New[person](a)
	if err != nil {
		return err
	}
	defer d.close(q.Close)

	for _, p := range []person{
		newPerson("Ivan Petrov", 30, 50000),
		newPerson("Maria Sidorova", 25, 60000),
		newPerson("Alexey Smirnov", 35, 75000),
	} {
		if err := q.Push(p); err != nil {
			return err
		}
	}

	fmt.Fprintln(d.out, "staff:")
	for p := range q.Values() {
		fmt.Fprintf(d.out, "  %s\n", p)
	}
	for _, p := range q.All() {
		p.Salary *= 1.1
	}
	fmt.Fprintln(d.out, "after a 10% raise:")
	for p := range q.Values() {
		fmt.Fprintf(d.out, "  %s\n", p)
	}
	d.printStats(a)
	return nil
}

func (d *demo) copyMove() error {
	d.section("Copy and move")
	a, err := d.newArena("copy_move", 0)
	if err != nil {
		return err
	}
	defer d.release(a)

	q, err := queue.New[int](a)
	if err != nil {
		return err
	}
	defer d.close(q.Close)
	for _, v := range []int{1, 2, 3} {
		if err := q.Push(v); err != nil {
			return err
		}
	}

	c, err := q.Clone()
	if err != nil {
		return err
	}
	defer d.close(c.Close)
	if _, err := c.Pop(); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "queue size %d, copy size %d after popping the copy\n", q.Len(), c.Len())

	m := q.Move()
	defer d.close(m.Close)
	fmt.Fprintf(d.out, "after move: source size %d (empty: %t), destination size %d\n", q.Len(), q.Empty(), m.Len())
	d.printStats(a)
	return nil
}

func (d *demo) reuse() error {
	d.section("Freed nodes are reused")
	a, err := d.newArena("reuse", 0)
	if err != nil {
		return err
	}
	defer d.release(a)

	q, err := queue.New[int](a)
	if err != nil {
		return err
	}
	defer d.close(q.Close)

	for i := 0; i < 5; i++ {
		if err := q.Push(i); err != nil {
			return err
		}
	}
	high := a.Stats().Used
	fmt.Fprintf(d.out, "used after 5 pushes: %d bytes\n", high)

	for round := 1; round <= 3; round++ {
		for i := 0; i < 3; i++ {
			if _, err := q.Pop(); err != nil {
				return err
			}
		}
		for i := 0; i < 3; i++ {
			if err := q.Push(round*100 + i); err != nil {
				return err
			}
		}
		fmt.Fprintf(d.out, "round %d: used %d bytes\n", round, a.Stats().Used)
	}
	if used := a.Stats().Used; used != high {
		return errors.Errorf("bump offset moved from %d to %d", high, used)
	}
	return nil
}

func (d *demo) exhaustion() error {
	d.section("Running out of memory")
	a, err := d.newArena("exhaustion", 64*datasize.B)
	if err != nil {
		return err
	}
	defer d.release(a)

	q, err := queue.New[int](a)
	if err != nil {
		return err
	}
	defer d.close(q.Close)

	for i := 0; ; i++ {
		err := q.Push(i)
		if errors.Is(err, arena.ErrOutOfMemory) {
			fmt.Fprintf(d.out, "push %d failed: out of memory, size stays %d\n", i, q.Len())
			break
		}
		if err != nil {
			return err
		}
	}
	d.printStats(a)
	return nil
}

func (d *demo) newArena(name string, capacity datasize.ByteSize) (*arena.Arena, error) {
	cfg := d.cfg
	if capacity != 0 {
		cfg.Capacity = capacity
	}
	return cfg.NewArena(
		arena.WithLogger(log.With(d.logger, "arena", name)),
		arena.WithRegisterer(prometheus.WrapRegistererWith(prometheus.Labels{"arena": name}, d.reg)),
	)
}

func (d *demo) release(a *arena.Arena) {
	if err := a.Release(); err != nil {
		level.Warn(d.logger).Log("msg", "failed to release arena", "err", err)
	}
}

func (d *demo) close(fn func() error) {
	if err := fn(); err != nil {
		level.Warn(d.logger).Log("msg", "failed to clear queue", "err", err)
	}
}

func (d *demo) section(title string) {
	fmt.Fprintf(d.out, "\n%s\n%s\n", title, strings.Repeat("-", 70))
}

func (d *demo) printStats(a *arena.Arena) {
	s := a.Stats()
	fmt.Fprintf(d.out, "arena: capacity %d bytes, used %d bytes, %d live blocks, %d free blocks\n",
		s.Capacity, s.Used, s.LiveBlocks, s.FreeBlocks)
}
