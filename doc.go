// Package reproject converts dome/fisheye intermediate renders into final
// display images in pure Go.
//
// A wide-field-of-view renderer first draws the scene into an intermediate
// image using a nonlinear radial projection. This package performs the
// second stage: for every output pixel it inverse-warps the pixel's
// normalized coordinate into the intermediate image, blends the four
// neighbouring texels with bilinear weights that ignore texels outside the
// captured image circle, and averages sub-samples when the intermediate
// image is multisampled.
//
// # Features
//
//   - Radial inverse warp with a strength parameter and a bypass switch
//   - Hard-discard and fallback-color handling outside the field of view
//   - Validity-aware bilinear resampling with border clamping
//   - Multisample resolve with joint weight/sample normalization
//   - float64 and float32 kernels
//   - Optional SIMD acceleration (AVX2/SSE/NEON) via github.com/tphakala/simd
//   - Parallel band processing with bit-identical results
//
// # Quick Start
//
// For one-shot reprojection of an image.Image:
//
//	cfg := reproject.ConfigForVariant(reproject.VariantStrict, 1.0)
//	out, stats, err := reproject.ReprojectImage(ctx, src, &cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For repeated passes with a reusable reprojector:
//
//	r, err := reproject.New(&reproject.Config{
//	    Variant:        reproject.VariantMasked,
//	    Strength:       0.8,
//	    EnableParallel: true,
//	    EnableSIMD:     true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for frame := range frames {
//	    dst.Fill(clearColor)
//	    if _, err := r.Process(ctx, frame, dst); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Warp
//
// For a normalized coordinate c in [-1,1]^2 and effective strength f
// (0 when bypassed):
//
//	base     = 0.5*(1 + dot(c,c))*f + (1 - f)
//	warped   = c / base
//	texcoord = 0.5*(1 + warped.x, 1 - warped.y)
//
// Strength must lie in [0, 1]; [Config.Validate] rejects other values.
//
// # Variants
//
//   - [VariantStrict]: pixels with dot(c,c) >= 1 are not written.
//   - [VariantMasked]: such pixels are written mid-gray.
//   - [VariantPassThrough]: identity warp, nothing discarded.
//   - [VariantCustom]: Bypass, Discard and Fallback as configured.
//
// # Zero-weight footprints
//
// Near the rim of very coarse intermediate images all four bilinear
// neighbours of a valid pixel can lie outside the circle. By default the
// blend is left unguarded and the pixel receives NaN channels, counted in
// [Stats.Degenerate]. [ZeroWeightTransparent] and [ZeroWeightDiscard] select
// a guarded result instead.
//
// # Thread Safety
//
// A [Reprojector] is safe for concurrent use. Source images must not be
// modified during a pass, and concurrent passes must not share a
// destination image.
package reproject
