// Package item provides a small item-stack payload for menu slots.
package item

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxAmount is the largest stack size.
const MaxAmount = 64

// Stack is a material and a count.
type Stack struct {
	Material string
	Amount   int
}

// New returns a stack of amount material, clamped to [1, MaxAmount].
func New(material string, amount int) Stack {
	return Stack{Material: material, Amount: clamp(amount)}
}

func clamp(amount int) int {
	if amount < 1 {
		return 1
	}
	if amount > MaxAmount {
		return MaxAmount
	}
	return amount
}

func (s Stack) String() string {
	if s.Amount <= 1 {
		return s.Material
	}
	return fmt.Sprintf("%s x%d", s.Material, s.Amount)
}

// Parse reads "material" or "material xN".
func Parse(text string) (Stack, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Stack{}, fmt.Errorf("empty item")
	}
	material, count, found := strings.Cut(text, " x")
	if !found {
		return New(text, 1), nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil {
		return Stack{}, fmt.Errorf("item %q: bad amount: %w", text, err)
	}
	return New(strings.TrimSpace(material), n), nil
}
