// Package input turns pointer events into graph actions.
//
// [ResolveClick] maps a screen point back through the viewport to the first
// node, in layout traversal order, whose box contains it. Box edges count as
// inside.
//
// Pointer tracking follows the window-listener pattern: a [Gesture] acquires
// move, up and cancel listeners on a [Dispatcher] at pointer-down and
// releases every one of them at pointer-up or cancel, so listeners never
// accumulate across gestures. A gesture that stays within [ClickSlop] is a
// click; anything larger pans the viewport live.
package input
