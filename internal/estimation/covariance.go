package estimation

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

var errNotMaximum = errors.New("hessian is not negative definite at the optimum")

// covariances returns the classical covariance (-H)^-1 and the robust
// sandwich H^-1 B H^-1, where B is the outer product of the per-observation
// scores.
func covariances(hess *mat.SymDense, scores *mat.Dense) (classical, robust *mat.SymDense, err error) {
	k := hess.SymmetricDim()

	info := mat.NewSymDense(k, nil)
	info.ScaleSym(-1, hess)

	var chol mat.Cholesky
	if ok := chol.Factorize(info); !ok {
		return nil, nil, errNotMaximum
	}
	classical = mat.NewSymDense(k, nil)
	if err := chol.InverseTo(classical); err != nil {
		return nil, nil, errors.Join(errNotMaximum, err)
	}

	meat := mat.NewSymDense(k, nil)
	meat.SymOuterK(1, scores.T())

	// (-H)^-1 B (-H)^-1 equals H^-1 B H^-1.
	var tmp, sandwich mat.Dense
	tmp.Mul(classical, meat)
	sandwich.Mul(&tmp, classical)

	robust = mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := 0; j <= i; j++ {
			robust.SetSym(i, j, (sandwich.At(i, j)+sandwich.At(j, i))/2)
		}
	}
	return classical, robust, nil
}
