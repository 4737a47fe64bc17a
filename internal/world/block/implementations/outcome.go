package implementations

import (
	"encoding/binary"

	"github.com/annel0/resinfarm/internal/vec"
	"github.com/cespare/xxhash/v2"
)

// outcomeRange – размер диапазона броска, шанс сравнивается с chance*outcomeRange
const outcomeRange = 1000

// OutcomeRoll возвращает детерминированный бросок в [0, outcomeRange) для позиции мира.
// Координаты и сид кодируются little-endian, поэтому результат одинаков на любой платформе.
func OutcomeRoll(worldSeed int64, pos vec.Vec3) int {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(worldSeed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(pos.X)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(int64(pos.Y)))
	binary.LittleEndian.PutUint64(buf[24:], uint64(int64(pos.Z)))
	return int(xxhash.Sum64(buf[:]) % outcomeRange)
}

// ShouldSucceed решает, даст ли блок смолу. Чистая функция: состояние не хранится,
// повторный вызов с теми же аргументами всегда возвращает тот же ответ.
func ShouldSucceed(worldSeed int64, pos vec.Vec3, chance float64) bool {
	return float64(OutcomeRoll(worldSeed, pos)) < chance*outcomeRange
}
