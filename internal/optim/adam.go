// Package optim provides gradient-based parameter optimizers.
package optim

import (
	"math"

	"github.com/digitml/mnistserve/internal/nn"
)

// Adam implements the Adam optimizer (Kingma & Ba, 2014) with bias
// correction:
//
//	m_t = beta1*m_{t-1} + (1-beta1)*g
//	v_t = beta2*v_{t-1} + (1-beta2)*g^2
//	param -= lr * (m_t/(1-beta1^t)) / (sqrt(v_t/(1-beta2^t)) + eps)
type Adam struct {
	params []*nn.Parameter
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	t      int
	m      [][]float32
	v      [][]float32
}

// AdamConfig holds Adam hyperparameters. Zero values fall back to the usual
// defaults (lr 0.001, betas 0.9/0.999, eps 1e-8).
type AdamConfig struct {
	LR    float32
	Beta1 float32
	Beta2 float32
	Eps   float32
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Beta1 == 0 {
		config.Beta1 = 0.9
	}
	if config.Beta2 == 0 {
		config.Beta2 = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	m := make([][]float32, len(params))
	v := make([][]float32, len(params))
	for i, p := range params {
		m[i] = make([]float32, p.Size())
		v[i] = make([]float32, p.Size())
	}

	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Beta1,
		beta2:  config.Beta2,
		eps:    config.Eps,
		m:      m,
		v:      v,
	}
}

// Step applies one Adam update using the gradients accumulated on the
// parameters.
func (a *Adam) Step() {
	a.t++
	biasCorrection1 := 1.0 - math.Pow(float64(a.beta1), float64(a.t))
	biasCorrection2 := 1.0 - math.Pow(float64(a.beta2), float64(a.t))

	for i, p := range a.params {
		m, v := a.m[i], a.v[i]
		for j := range p.Data {
			g := p.Grad[j]
			m[j] = a.beta1*m[j] + (1.0-a.beta1)*g
			v[j] = a.beta2*v[j] + (1.0-a.beta2)*g*g

			mHat := float64(m[j]) / biasCorrection1
			vHat := float64(v[j]) / biasCorrection2
			p.Data[j] -= a.lr * float32(mHat/(math.Sqrt(vHat)+float64(a.eps)))
		}
	}
}

// ZeroGrad clears gradients on all parameters.
func (a *Adam) ZeroGrad() {
	for _, p := range a.params {
		p.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (a *Adam) LR() float32 { return a.lr }

// SetLR updates the learning rate, for schedules.
func (a *Adam) SetLR(lr float32) { a.lr = lr }
