// Package domain defines the Cheese Island game entities and their
// validation rules. Types here are storage-agnostic; persistence and
// transactional behavior live in internal/game/storage.
package domain
