package object

// Kind is the concrete type of an object.
type Kind string

// Asset kinds.
const (
	KindWorld            Kind = "World"
	KindSceneAnchor      Kind = "SceneAnchor"
	KindTexture          Kind = "Texture"
	KindMaterialFunction Kind = "MaterialFunction"
	KindMaterial         Kind = "Material"
	KindStaticMesh       Kind = "StaticMesh"
	KindLevelSequence    Kind = "LevelSequence"
	KindVariantSets      Kind = "VariantSets"
	KindVariant          Kind = "Variant"
)

// Actor kinds. The set is closed; anything else imports as KindGenericActor.
const (
	KindStaticMeshActor   Kind = "StaticMeshActor"
	KindPointLight        Kind = "PointLight"
	KindSpotLight         Kind = "SpotLight"
	KindDirectionalLight  Kind = "DirectionalLight"
	KindAreaLight         Kind = "AreaLight"
	KindCamera            Kind = "Camera"
	KindLandscape         Kind = "Landscape"
	KindPostProcessVolume Kind = "PostProcessVolume"
	KindGenericActor      Kind = "Generic"
)

// Component kinds.
const (
	KindSceneComponent         Kind = "SceneComponent"
	KindStaticMeshComponent    Kind = "StaticMeshComponent"
	KindInstancedMeshComponent Kind = "InstancedMeshComponent"
)

// ActorKinds lists every actor kind.
var ActorKinds = []Kind{
	KindStaticMeshActor,
	KindPointLight,
	KindSpotLight,
	KindDirectionalLight,
	KindAreaLight,
	KindCamera,
	KindLandscape,
	KindPostProcessVolume,
	KindGenericActor,
}

// IsActor reports whether k is one of the actor kinds.
func (k Kind) IsActor() bool {
	for _, a := range ActorKinds {
		if a == k {
			return true
		}
	}
	return false
}

// IsComponent reports whether k is a scene component kind.
func (k Kind) IsComponent() bool {
	switch k {
	case KindSceneComponent, KindStaticMeshComponent, KindInstancedMeshComponent:
		return true
	}
	return false
}

// IsLight reports whether k is a light actor kind.
func (k Kind) IsLight() bool {
	switch k {
	case KindPointLight, KindSpotLight, KindDirectionalLight, KindAreaLight:
		return true
	}
	return false
}

// ActorKind maps a free-form actor type name onto the closed actor set.
func ActorKind(name string) Kind {
	k := Kind(name)
	if k.IsActor() {
		return k
	}
	return KindGenericActor
}
