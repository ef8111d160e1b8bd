package bracket

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

// NewID выдаёт уникальный идентификатор сущности. UUID v4, коллизии внутри
// турнира исключены.
func NewID() string {
	return uuid.NewString()
}

// Подменяются в тестах для детерминированных раскладов. Глобальный источник
// math/rand/v2 потокобезопасен; криптостойкость здесь не нужна.
var (
	shuffleFn = rand.Shuffle
	intN      = rand.IntN
)

func shuffled[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	shuffleFn(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
