package utils

// CycleEnum steps an enum with values 0..last forwards (direction > 0) or
// backwards, wrapping at both ends.
func CycleEnum[T ~int](current T, direction int, last T) T {
	n := int(last) + 1
	return T(((int(current)+direction)%n + n) % n)
}

func NextEnum[T ~int](current, last T) T { return CycleEnum(current, 1, last) }

func PrevEnum[T ~int](current, last T) T { return CycleEnum(current, -1, last) }
