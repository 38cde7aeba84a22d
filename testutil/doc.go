// Package testutil provides shared test helpers: a context factory and a
// scriptable fake of the Tripo3D API backed by httptest.
package testutil
