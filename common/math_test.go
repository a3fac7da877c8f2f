package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
)

var approx = cmpopts.EquateApprox(0, 1e-4)

func TestEulerRotatesAxes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		q       mgl32.Quat
		in, out mgl32.Vec3
	}{
		{"yaw 90 turns forward to right", Euler(0, 90, 0), AxisZ, AxisX},
		{"pitch 90 turns forward to down", Euler(90, 0, 0), AxisZ, mgl32.Vec3{0, -1, 0}},
		{"roll 90 turns right to up", Euler(0, 0, 90), AxisX, AxisY},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.out, tc.q.Rotate(tc.in), approx); diff != "" {
				t.Errorf("rotated vector mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEulerAnglesRoundTrip(t *testing.T) {
	t.Parallel()

	x, y, z := EulerAngles(Euler(30, 45, 10))
	assert.InDelta(t, 30, x, 1e-3)
	assert.InDelta(t, 45, y, 1e-3)
	assert.InDelta(t, 10, z, 1e-3)

	x, y, z = EulerAngles(Euler(-30, -90, 0))
	assert.InDelta(t, 330, x, 1e-3, "negative pitch wraps into [0, 360)")
	assert.InDelta(t, 270, y, 1e-3)
	assert.InDelta(t, 0, z, 1e-3)
}

func TestEulerEquivalentForms(t *testing.T) {
	t.Parallel()

	// The overview pose and the rotation the return animation aims at are the same orientation.
	assert.True(t, SameRotation(Euler(70, 270, 0), Euler(110, 90, -180), 1e-5))
}

func TestAngleWrapping(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, -90, SignedAngle(270), 1e-4)
	assert.InDelta(t, 180, SignedAngle(-180), 1e-4)
	assert.InDelta(t, 10, SignedAngle(370), 1e-4)
	assert.InDelta(t, 270, UnsignedAngle(-90), 1e-4)
	assert.InDelta(t, 0, UnsignedAngle(720), 1e-4)
	assert.InDelta(t, 359, UnsignedAngle(-1), 1e-4)
}

func TestUnsignedAngleDropsNegativeZero(t *testing.T) {
	t.Parallel()

	negZero := math32.Copysign(0, -1)
	assert.False(t, math32.Signbit(UnsignedAngle(negZero)))
	assert.False(t, math32.Signbit(UnsignedAngle(-360)))

	pitch, _, _ := EulerAngles(mgl32.QuatIdent())
	assert.False(t, math32.Signbit(pitch))
}

func TestClampPitch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		pitch float32
		want  float32
	}{
		{"above max", 95, 80},
		{"below min", -95, -80},
		{"inside", 30, 30},
		{"at max", 80, 80},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, _, _ := EulerAngles(ClampPitch(Euler(tc.pitch, 0, 0), -80, 80))
			assert.InDelta(t, tc.want, SignedAngle(x), 1e-2)
		})
	}

	q := Euler(30, 20, 5)
	assert.True(t, SameRotation(q, ClampPitch(q, -80, 80), 1e-5), "rotation within limits is unchanged")
}

func TestSlerp(t *testing.T) {
	t.Parallel()

	a := Euler(0, 0, 0)
	b := Euler(0, 90, 0)

	assert.True(t, SameRotation(a, Slerp(a, b, 0), 1e-6))
	assert.True(t, SameRotation(b, Slerp(a, b, 1), 1e-6))
	assert.True(t, SameRotation(b, Slerp(a, b, 2), 1e-6), "t is clamped")
	assert.True(t, SameRotation(Euler(0, 45, 0), Slerp(a, b, 0.5), 1e-5))

	// b and -b are the same rotation; the blend must not swing the long way round.
	neg := b.Scale(-1)
	assert.True(t, SameRotation(Euler(0, 45, 0), Slerp(a, neg, 0.5), 1e-5))
}

func TestLookRotation(t *testing.T) {
	t.Parallel()

	for _, fwd := range []mgl32.Vec3{{1, 0, 0}, {0, 0, -1}, {3, 0, 4}, {-1, 0, 1}} {
		q := LookRotation(fwd, AxisY)
		if diff := cmp.Diff(fwd.Normalize(), q.Rotate(AxisZ), approx); diff != "" {
			t.Errorf("forward %v mismatch (-want +got):\n%s", fwd, diff)
		}
		if diff := cmp.Diff(AxisY, q.Rotate(AxisY), approx); diff != "" {
			t.Errorf("up for forward %v mismatch (-want +got):\n%s", fwd, diff)
		}
	}

	assert.Equal(t, mgl32.QuatIdent(), LookRotation(mgl32.Vec3{}, AxisY))

	down := LookRotation(mgl32.Vec3{0, -1, 0}, AxisY)
	if diff := cmp.Diff(mgl32.Vec3{0, -1, 0}, down.Rotate(AxisZ), approx); diff != "" {
		t.Errorf("forward parallel to up mismatch (-want +got):\n%s", diff)
	}
}

func TestIsDegenerate(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDegenerate(mgl32.Quat{}))
	assert.True(t, IsDegenerate(mgl32.Quat{W: math32.NaN()}))
	assert.True(t, IsDegenerate(mgl32.Quat{W: 1, V: mgl32.Vec3{math32.Inf(1), 0, 0}}))
	assert.False(t, IsDegenerate(mgl32.QuatIdent()))
	assert.False(t, IsDegenerate(Euler(10, 20, 30)))
}

func TestLerp(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 5, Lerp(0, 10, 0.5), 1e-6)
	if diff := cmp.Diff(mgl32.Vec3{1, 2, 3}, LerpVec3(mgl32.Vec3{}, mgl32.Vec3{2, 4, 6}, 0.5), approx); diff != "" {
		t.Errorf("LerpVec3 mismatch (-want +got):\n%s", diff)
	}
}
