package opencv

import (
	"fmt"

	"gocv.io/x/gocv"
)

func ValidateMatForOperation(mat gocv.Mat, operation string) error {
	if mat.Empty() {
		return fmt.Errorf("mat is empty for operation: %s", operation)
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("mat has invalid dimensions %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), operation)
	}

	if mat.Channels() != 3 {
		return fmt.Errorf("%s requires a 3 channel BGR Mat, got %d channels", operation, mat.Channels())
	}

	return nil
}

// kernelSize picks an odd gaussian kernel that covers +-3 sigma.
func kernelSize(sigma float64) int {
	k := int(sigma*6) + 1
	if k%2 == 0 {
		k++
	}
	return max(3, k)
}
