/*
Package session shares one editor between concurrent callers.

A Session holds the editor behind a mutex and addresses rows by path instead of
model indexes, which do not survive between requests. Edit text is parsed as a
literal against the current value of the row. Detail models are cached by the
editor, so undo and redo keep working across calls.
*/
package session
