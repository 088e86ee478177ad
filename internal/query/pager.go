package query

import "slices"

// CanNext сообщает, вернул ли последний ответ токен следующей страницы.
func (s State) CanNext() bool {
	return s.cursors.After != ""
}

// CanPrev сообщает, есть ли предыдущая страница.
func (s State) CanPrev() bool {
	return len(s.stack) > 0
}

// Next запоминает токен after последнего ответа и переходит на следующую страницу.
// Возвращает false, если токена нет.
func (s State) Next() (State, bool) {
	if !s.CanNext() {
		return s, false
	}
	stack := make([]string, 0, len(s.stack)+1)
	stack = append(stack, s.stack...)
	stack = append(stack, s.cursors.After)
	return State{filters: s.filters, stack: stack}, true
}

// Prev возвращается на предыдущую страницу. Возвращает false на первой странице.
//
// Токен before текущей страницы не используется: предыдущая страница
// запрашивается повторно тем же токеном after, которым до неё дошли.
// Если страница становится первой, запрос уходит без курсоров.
func (s State) Prev() (State, bool) {
	if !s.CanPrev() {
		return s, false
	}
	stack := slices.Clone(s.stack[:len(s.stack)-1])
	if len(stack) == 0 {
		stack = nil
	}
	return State{filters: s.filters, stack: stack}, true
}
