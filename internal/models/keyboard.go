package models

// Button - кнопка inline-клавиатуры, не привязанная к конкретному транспорту.
type Button struct {
	Text string
	Data string
}

// Keyboard - ряды кнопок.
type Keyboard [][]Button

// Row собирает ряд кнопок.
func Row(buttons ...Button) []Button {
	return buttons
}
