package effect

// BasicMaterialBuilderOption is a functional option for configuring a BasicMaterial.
type BasicMaterialBuilderOption func(*BasicMaterial)

// WithDiffuseColor sets the material's diffuse color.
//
// Parameters:
//   - r, g, b: the diffuse color components
//
// Returns:
//   - BasicMaterialBuilderOption: a function that sets the diffuse color
func WithDiffuseColor(r, g, b float32) BasicMaterialBuilderOption {
	return func(m *BasicMaterial) {
		m.DiffuseColor = [3]float32{r, g, b}
	}
}

// WithEmissiveColor sets the material's emissive color.
//
// Parameters:
//   - r, g, b: the emissive color components
//
// Returns:
//   - BasicMaterialBuilderOption: a function that sets the emissive color
func WithEmissiveColor(r, g, b float32) BasicMaterialBuilderOption {
	return func(m *BasicMaterial) {
		m.EmissiveColor = [3]float32{r, g, b}
	}
}

// WithSpecular sets the material's specular color and power.
//
// Parameters:
//   - r, g, b: the specular color components
//   - power: the specular exponent
//
// Returns:
//   - BasicMaterialBuilderOption: a function that sets the specular response
func WithSpecular(r, g, b, power float32) BasicMaterialBuilderOption {
	return func(m *BasicMaterial) {
		m.SpecularColor = [3]float32{r, g, b}
		m.SpecularPower = power
	}
}

// WithAlpha sets the material's opacity.
//
// Parameters:
//   - alpha: opacity in [0, 1]
//
// Returns:
//   - BasicMaterialBuilderOption: a function that sets the alpha
func WithAlpha(alpha float32) BasicMaterialBuilderOption {
	return func(m *BasicMaterial) {
		m.Alpha = alpha
	}
}

// DirectionalLightBuilderOption is a functional option for configuring a DirectionalLight.
type DirectionalLightBuilderOption func(*DirectionalLight)

// WithDirection sets the direction the light shines along.
//
// Parameters:
//   - x, y, z: the direction, normalized when applied
//
// Returns:
//   - DirectionalLightBuilderOption: a function that sets the direction
func WithDirection(x, y, z float32) DirectionalLightBuilderOption {
	return func(l *DirectionalLight) {
		l.Direction = [3]float32{x, y, z}
	}
}

// WithLightColor sets both the diffuse and specular color of a directional light.
//
// Parameters:
//   - r, g, b: the light color
//
// Returns:
//   - DirectionalLightBuilderOption: a function that sets the light colors
func WithLightColor(r, g, b float32) DirectionalLightBuilderOption {
	return func(l *DirectionalLight) {
		l.DiffuseColor = [3]float32{r, g, b}
		l.SpecularColor = [3]float32{r, g, b}
	}
}

// WithIntensity sets a directional light's intensity.
//
// Parameters:
//   - intensity: the brightness multiplier
//
// Returns:
//   - DirectionalLightBuilderOption: a function that sets the intensity
func WithIntensity(intensity float32) DirectionalLightBuilderOption {
	return func(l *DirectionalLight) {
		l.Intensity = intensity
	}
}

// PointLightBuilderOption is a functional option for configuring a PointLight.
type PointLightBuilderOption func(*PointLight)

// WithPointPosition sets the point light's world position.
//
// Parameters:
//   - x, y, z: the position
//
// Returns:
//   - PointLightBuilderOption: a function that sets the position
func WithPointPosition(x, y, z float32) PointLightBuilderOption {
	return func(l *PointLight) {
		l.Position = [3]float32{x, y, z}
	}
}

// WithPointColor sets the point light's color and intensity.
//
// Parameters:
//   - r, g, b: the light color
//   - intensity: the brightness multiplier
//
// Returns:
//   - PointLightBuilderOption: a function that sets the color
func WithPointColor(r, g, b, intensity float32) PointLightBuilderOption {
	return func(l *PointLight) {
		l.Color = [3]float32{r, g, b}
		l.Intensity = intensity
	}
}

// WithRange sets the distance at which the point light's contribution reaches zero.
//
// Parameters:
//   - r: the range
//
// Returns:
//   - PointLightBuilderOption: a function that sets the range
func WithRange(r float32) PointLightBuilderOption {
	return func(l *PointLight) {
		l.Range = r
	}
}
