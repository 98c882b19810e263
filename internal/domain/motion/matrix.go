package motion

import "gonum.org/v1/gonum/mat"

// MatrixDims returns the dimensions of m, or ErrInvalidArgument when m is
// unset or has no rows or columns.
func MatrixDims(m mat.Matrix) (rows, cols int, err error) {
	if m == nil {
		return 0, 0, InvalidArgument("matrix is not set")
	}

	if d, ok := m.(*mat.Dense); ok && (d == nil || d.IsEmpty()) {
		return 0, 0, InvalidArgument("matrix is empty")
	}

	rows, cols = m.Dims()
	if rows == 0 || cols == 0 {
		return 0, 0, InvalidArgument("matrix is empty")
	}

	return rows, cols, nil
}
