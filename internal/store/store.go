// Package store implementa el almacén de documentos en memoria, autoritativo
// durante la sesión. Toda mutación es visible de inmediato para todos los
// lectores y notifica a los suscriptores sin polling; la persistencia remota
// ocurre aparte, de forma asíncrona y best-effort.
package store

import "sync"

// EventType tipo de mutación notificada.
type EventType string

const (
	EventPut    EventType = "put"
	EventDelete EventType = "delete"
)

// Event notificación de una mutación del almacén.
type Event[T any] struct {
	Type EventType
	ID   string
	Doc  T
}

// Store almacén genérico en memoria con notificación a suscriptores.
// Modelo de un escritor por documento: las mutaciones son síncronas y el
// conflicto se resuelve por último-escritor-gana.
type Store[T any] struct {
	mu      sync.RWMutex
	items   map[string]T
	subs    map[int]func(Event[T])
	nextSub int
}

// New construye un almacén vacío.
func New[T any]() *Store[T] {
	return &Store[T]{
		items: make(map[string]T),
		subs:  make(map[int]func(Event[T])),
	}
}

// Get devuelve el documento y si existe.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.items[id]
	return doc, ok
}

// List devuelve todos los documentos.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.items))
	for _, doc := range s.items {
		out = append(out, doc)
	}
	return out
}

// Len cantidad de documentos almacenados.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Put inserta o reemplaza el documento y notifica a los suscriptores.
func (s *Store[T]) Put(id string, doc T) {
	s.mu.Lock()
	s.items[id] = doc
	subs := s.snapshotSubs()
	s.mu.Unlock()

	notify(subs, Event[T]{Type: EventPut, ID: id, Doc: doc})
}

// Delete elimina el documento (si existe) y notifica a los suscriptores.
func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	doc, ok := s.items[id]
	if ok {
		delete(s.items, id)
	}
	subs := s.snapshotSubs()
	s.mu.Unlock()

	if ok {
		notify(subs, Event[T]{Type: EventDelete, ID: id, Doc: doc})
	}
}

// Subscribe registra un callback que recibe cada mutación. Devuelve la función
// para cancelar la suscripción. Los callbacks se invocan de forma síncrona,
// fuera del lock, en el goroutine que mutó.
func (s *Store[T]) Subscribe(fn func(Event[T])) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store[T]) snapshotSubs() []func(Event[T]) {
	out := make([]func(Event[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify[T any](subs []func(Event[T]), ev Event[T]) {
	for _, fn := range subs {
		fn(ev)
	}
}
