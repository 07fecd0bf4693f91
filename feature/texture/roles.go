package texture

import (
	"scene-publisher/core/scene"
)

// Role is how materials use a texture. It drives the decode and compression
// settings of the texture asset.
type Role string

const (
	RoleDefault        Role = "Default"
	RoleDiffuse        Role = "Diffuse"
	RoleSpecular       Role = "Specular"
	RoleNormal         Role = "Normal"
	RoleNormalGreenInv Role = "NormalGreenInv"
	RoleDisplace       Role = "Displace"
	RoleBump           Role = "Bump"
)

// maxFunctionDepth bounds nested material function lookups.
const maxFunctionDepth = 16

// InferRoles scans every material of sc and assigns a role to each texture
// referenced by one of their slots. Textures are matched by name. When
// several materials use the same texture, the last one wins. Textures no
// material uses get RoleDefault.
func InferRoles(sc *scene.Scene) map[string]Role {
	roles := make(map[string]Role, len(sc.Textures))
	for _, t := range sc.Textures {
		roles[t.Name] = RoleDefault
	}

	functions := make(map[string]*scene.MaterialFunction, len(sc.MaterialFunctions))
	for _, f := range sc.MaterialFunctions {
		functions[f.Name] = f
	}

	for _, t := range sc.Textures {
		for _, m := range sc.Materials {
			if m.Shader != nil {
				if r, ok := shaderRole(m.Shader, t.Name); ok {
					roles[t.Name] = r
				}
			}
			if m.Graph != nil {
				if r, ok := graphRole(m.Graph, functions, t.Name, roles[t.Name]); ok {
					roles[t.Name] = r
				}
			}
		}
	}
	return roles
}

func shaderRole(s *scene.Shader, texture string) (Role, bool) {
	switch texture {
	case s.Diffuse:
		return RoleDiffuse, true
	case s.Reflectance:
		return RoleSpecular, true
	case s.Displace:
		return RoleDisplace, true
	case s.Normal:
		if s.NormalInvert {
			return RoleNormalGreenInv, true
		}
		return RoleNormal, true
	}
	return "", false
}

func graphRole(g *scene.Graph, functions map[string]*scene.MaterialFunction, texture string, current Role) (Role, bool) {
	switch {
	case connected(g.Expressions, g.BaseColor, functions, texture, 0):
		return RoleDiffuse, true
	case connected(g.Expressions, g.Specular, functions, texture, 0):
		return RoleSpecular, true
	case connected(g.Expressions, g.Normal, functions, texture, 0):
		// a bump map wired into the normal input keeps its role
		if current == RoleBump {
			return "", false
		}
		return RoleNormal, true
	}
	return "", false
}

// connected reports whether the expression named input, looked up in exprs,
// samples texture directly or through a material function.
func connected(exprs []scene.Expression, input string, functions map[string]*scene.MaterialFunction, texture string, depth int) bool {
	if input == "" || depth > maxFunctionDepth {
		return false
	}
	for _, e := range exprs {
		if e.Name != input {
			continue
		}
		switch e.Type {
		case scene.ExpressionTexture:
			return e.Texture == texture
		case scene.ExpressionFunction:
			f, ok := functions[e.Function]
			if !ok {
				return false
			}
			for _, fe := range f.Expressions {
				if connected(f.Expressions, fe.Name, functions, texture, depth+1) {
					return true
				}
			}
		}
		return false
	}
	return false
}

// Settings are the texture asset settings derived from a role.
type Settings struct {
	SRGB        bool
	Compression string
	MipGen      string
	LODGroup    string
	FlipGreen   bool
}

// SettingsFor returns the settings of a texture used as role. Environment
// maps keep their HDR data whatever the role.
func SettingsFor(r Role, environment bool) Settings {
	if environment {
		return Settings{Compression: "HDR", MipGen: "NoMipmaps", LODGroup: "Skybox"}
	}
	switch r {
	case RoleDiffuse:
		return Settings{SRGB: true, Compression: "Default", MipGen: "FromTextureGroup", LODGroup: "World"}
	case RoleSpecular:
		return Settings{Compression: "Masks", MipGen: "FromTextureGroup", LODGroup: "WorldSpecular"}
	case RoleNormal:
		return Settings{Compression: "Normalmap", MipGen: "FromTextureGroup", LODGroup: "WorldNormalMap"}
	case RoleNormalGreenInv:
		return Settings{Compression: "Normalmap", MipGen: "FromTextureGroup", LODGroup: "WorldNormalMap", FlipGreen: true}
	case RoleDisplace, RoleBump:
		return Settings{Compression: "Grayscale", MipGen: "NoMipmaps", LODGroup: "World"}
	}
	return Settings{SRGB: true, Compression: "Default", MipGen: "FromTextureGroup", LODGroup: "World"}
}
