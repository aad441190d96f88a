package cache

// Keyer builds cache keys for pipeline artifacts.
type Keyer interface {
	// GraphKey identifies an exported graph built from the dataset with
	// the given content hash.
	GraphKey(datasetHash string, opts GraphKeyOpts) string
	// RenderKey identifies a rendered artifact of a cached graph.
	RenderKey(graphHash string, opts RenderKeyOpts) string
	// UploadKey identifies an uploaded dataset.
	UploadKey(id string) string
}

// GraphKeyOpts lists every parameter that changes a built graph.
type GraphKeyOpts struct {
	Mode         string   `json:"mode,omitempty"`
	Kinds        []string `json:"kinds,omitempty"`
	AllKinds     bool     `json:"all_kinds,omitempty"`
	MinValue     float64  `json:"min_value,omitempty"`
	PairMinimum  bool     `json:"pair_minimum,omitempty"`
	Search       string   `json:"search,omitempty"`
	Focus        string   `json:"focus,omitempty"`
	Counterparty string   `json:"counterparty,omitempty"`
	Itemized     bool     `json:"itemized,omitempty"`
	Layout       string   `json:"layout,omitempty"`
	MaxLevel     int      `json:"max_level,omitempty"`
	DemoteHubs   bool     `json:"demote_hubs,omitempty"`
	HubThreshold int      `json:"hub_threshold,omitempty"`
	Direction    string   `json:"direction,omitempty"`
	StylesHash   string   `json:"styles_hash,omitempty"`
}

// RenderKeyOpts lists every parameter that changes a rendered artifact.
type RenderKeyOpts struct {
	Format    string `json:"format"`
	Direction string `json:"direction,omitempty"`
	Detailed  bool   `json:"detailed,omitempty"`
}

// DefaultKeyer hashes parameters into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey returns "graph:<hash>".
func (DefaultKeyer) GraphKey(datasetHash string, opts GraphKeyOpts) string {
	return hashKey("graph", datasetHash, opts)
}

// RenderKey returns "render:<hash>".
func (DefaultKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return hashKey("render", graphHash, opts)
}

// UploadKey returns "upload:<id>".
func (DefaultKeyer) UploadKey(id string) string { return "upload:" + id }
