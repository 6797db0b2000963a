// Package kmcinput writes the input deck of the kinetic Monte Carlo engine:
// the run parameters, the species, the products, the events and the lateral
// interactions. The initial lattice itself is written by the wulff
// calculation.
package kmcinput

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/kpotier/nanowulff/pkg/lattice"
	"github.com/kpotier/nanowulff/pkg/util"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml"
)

// Type is the type of calculation.
var Type = "kmc_input"

// Species is an adsorbate. PPRatio is given in percent.
type Species struct {
	Name      string    `toml:"name" validate:"required"`
	IsTwoSite bool      `toml:"is_twosite"`
	Mass      float64   `toml:"mass" validate:"gt=0"`
	SGas      float64   `toml:"s_gas"`
	SAds      float64   `toml:"s_ads"`
	Sticking  []float64 `toml:"sticking" validate:"len=2"`
	EAdsPara  []float64 `toml:"e_ads_para" validate:"len=3"`
	EaDiff    float64   `toml:"ea_diff"`
	PPRatio   float64   `toml:"pp_ratio" validate:"gte=0,lte=100"`
}

// Product is a gas produced by the events. EventGen and EventConsum are the
// IDs (starting at 1) of the events generating and consuming it.
type Product struct {
	Name        string `toml:"name" validate:"required"`
	EventGen    []int  `toml:"event_gen" validate:"dive,gte=1"`
	EventConsum []int  `toml:"event_consum" validate:"dive,gte=1"`
}

// Event is an elementary step. CovBefore and CovAfter are the species
// occupying the one or two sites before and after the event, zero meaning
// an empty site. BEPPara is only used by reactions.
type Event struct {
	Name      string    `toml:"name" validate:"required"`
	Type      string    `toml:"type" validate:"oneof=Adsorption Desorption Diffusion Reaction"`
	IsTwoSite bool      `toml:"is_twosite"`
	CovBefore []int     `toml:"cov_before" validate:"len=2,dive,gte=0"`
	CovAfter  []int     `toml:"cov_after" validate:"len=2,dive,gte=0"`
	BEPPara   []float64 `toml:"bep_para"`
}

var alias = map[string]string{
	"Adsorption": "ads",
	"Desorption": "des",
	"Diffusion":  "diff",
	"Reaction":   "rec",
}

// KMCInput is a structure containing the parameters that can be parsed from a
// TOML configuration file. This structure can be instanced through the New
// method. LI is the lateral interaction matrix between the species.
type KMCInput struct {
	Dir string `toml:"kmc_input.dir"`

	Temperature float64 `toml:"kmc_input.temperature" validate:"gt=0"`
	Pressure    float64 `toml:"kmc_input.pressure" validate:"gt=0"`
	Structure   string  `toml:"kmc_input.structure" validate:"oneof=FCC BCC HCP"`
	LatticeA    float64 `toml:"kmc_input.lattice_a" validate:"gt=0"`

	Loops     int `toml:"kmc_input.loops" validate:"gt=0"`
	RecordInt int `toml:"kmc_input.record_int" validate:"gt=0"`

	LI [][]float64 `toml:"kmc_input.li"`

	Species  []Species `toml:"kmc_input.species" validate:"required,dive"`
	Products []Product `toml:"kmc_input.product" validate:"dive"`
	Events   []Event   `toml:"kmc_input.event" validate:"required,dive"`

	bond float64
}

// DefaultDir is the directory read by the KMC engine.
const DefaultDir = "data/INPUT"

var validate = validator.New()

// New returns an instance of the KMCInput structure. It reads and parses the
// configuration file given in argument. The file must be a TOML file.
func New(path string) (*KMCInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var k KMCInput
	dec := toml.NewDecoder(f)
	err = dec.Decode(&k)
	if err != nil {
		return nil, err
	}

	err = k.check()
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (k *KMCInput) check() error {
	err := validate.Struct(k)
	if err != nil {
		return util.ValidationError(err)
	}

	if k.Dir == "" {
		k.Dir = DefaultDir
	}

	n := len(k.Species)
	if len(k.LI) != n {
		return fmt.Errorf("li: need %d rows, got %d", n, len(k.LI))
	}
	for i, row := range k.LI {
		if len(row) != n {
			return fmt.Errorf("li: row %d: need %d columns, got %d", i+1, n, len(row))
		}
	}

	for i, e := range k.Events {
		for _, s := range append(append([]int{}, e.CovBefore...), e.CovAfter...) {
			if s > n {
				return fmt.Errorf("event %d (%s): species %d doesn't exist", i+1, e.Name, s)
			}
		}
		if e.Type == "Reaction" && len(e.BEPPara) != 2 {
			return fmt.Errorf("event %d (%s): need 2 values for bep_para, got %d", i+1, e.Name, len(e.BEPPara))
		}
	}

	for i, p := range k.Products {
		for _, e := range append(append([]int{}, p.EventGen...), p.EventConsum...) {
			if e > len(k.Events) {
				return fmt.Errorf("product %d (%s): event %d doesn't exist", i+1, p.Name, e)
			}
		}
	}

	s, err := lattice.ParseStructure(k.Structure)
	if err != nil {
		return err
	}
	k.bond = lattice.Cutoff(s, k.LatticeA)
	return nil
}

// Start performs the calculation. It is a thread blocking method. The files
// are only written if all of them could be rendered.
func (k *KMCInput) Start(log *log.Logger) error {
	files := map[string][]byte{
		"input.txt":    k.input(),
		"species.txt":  k.species(),
		"products.txt": k.products(),
		"events.txt":   k.events(),
		"li.txt":       k.li(),
	}

	order := []string{"input.txt", "species.txt", "products.txt", "events.txt", "li.txt"}
	paths := make(map[string][]byte, len(files))
	for i, name := range order {
		order[i] = filepath.Join(k.Dir, name)
		paths[order[i]] = files[name]
	}

	err := util.WriteFiles(paths, order)
	if err != nil {
		return fmt.Errorf("WriteFiles: %w", err)
	}

	if log != nil {
		log.Printf("kmc_input: %d species, %d events, %d products written in %s",
			len(k.Species), len(k.Events), len(k.Products), k.Dir)
	}
	return nil
}

func (k *KMCInput) input() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%v\t\t ! Temperature (K)\n", k.Temperature)
	fmt.Fprintf(&b, "%v\t\t ! Pressure (Pa)\n", k.Pressure)
	fmt.Fprintf(&b, "%v\t\t ! Bond length (A)\n", k.bond)
	fmt.Fprintf(&b, "%d\t\t ! Num of species\n", len(k.Species))
	fmt.Fprintf(&b, "%d\t\t ! Num of events\n", len(k.Events))
	fmt.Fprintf(&b, "%d\t\t ! Num of products\n", len(k.Products))
	fmt.Fprintf(&b, "%d\t\t ! Num of steps\n", k.Loops)
	fmt.Fprintf(&b, "%d\t\t ! record inteval\n", k.RecordInt)
	return b.Bytes()
}

func (k *KMCInput) species() []byte {
	var b bytes.Buffer
	for i, s := range k.Species {
		fmt.Fprintf(&b, "ID: %d\n", i+1)
		fmt.Fprintf(&b, "Name: %s\n", s.Name)
		fmt.Fprintf(&b, "is_twosite: %s\n", boolean(s.IsTwoSite))
		fmt.Fprintf(&b, "mass: %v\n", s.Mass)
		fmt.Fprintf(&b, "S_gas0: %v\n", s.SGas)
		fmt.Fprintf(&b, "S_ads: %v\n", s.SAds)
		fmt.Fprintf(&b, "sticking: %v %v\n", s.Sticking[0], s.Sticking[1])
		fmt.Fprintf(&b, "E_ads_para: %v %v %v\n", s.EAdsPara[0], s.EAdsPara[1], s.EAdsPara[2])
		fmt.Fprintf(&b, "Ea_diff: %v\n", s.EaDiff)
		fmt.Fprintf(&b, "PP_ratio: %v\n", s.PPRatio*0.01)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func (k *KMCInput) products() []byte {
	var b bytes.Buffer
	for i, p := range k.Products {
		fmt.Fprintf(&b, "ID: %d\n", i+1)
		fmt.Fprintf(&b, "Name: %s\n", p.Name)
		fmt.Fprintf(&b, "num_gen: %d\n", len(p.EventGen))
		fmt.Fprintf(&b, "event_gen: %s\n", ids(p.EventGen))
		fmt.Fprintf(&b, "num_consum: %d\n", len(p.EventConsum))
		fmt.Fprintf(&b, "event_consum: %s\n", ids(p.EventConsum))
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func (k *KMCInput) events() []byte {
	var b bytes.Buffer
	for i, e := range k.Events {
		fmt.Fprintf(&b, "ID: %d\n", i+1)
		fmt.Fprintf(&b, "Name: %s\n", e.Name)
		fmt.Fprintf(&b, "event_type: %s\n", alias[e.Type])
		fmt.Fprintf(&b, "is_twosite: %s\n", boolean(e.IsTwoSite))
		fmt.Fprintf(&b, "cov_before: %d %d\n", e.CovBefore[0], e.CovBefore[1])
		fmt.Fprintf(&b, "cov_after: %d %d\n", e.CovAfter[0], e.CovAfter[1])
		if e.Type == "Reaction" {
			fmt.Fprintf(&b, "BEP_para: %v %v\n", e.BEPPara[0], e.BEPPara[1])
		}
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func (k *KMCInput) li() []byte {
	var b bytes.Buffer
	for _, row := range k.LI {
		for j, v := range row {
			if j > 0 {
				b.WriteByte('\t')
			}
			fmt.Fprintf(&b, "%.3f", v)
		}
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// ids writes the IDs followed by a space, or 0 if there is none.
func ids(v []int) string {
	if len(v) == 0 {
		return "0"
	}
	var b bytes.Buffer
	for _, id := range v {
		fmt.Fprintf(&b, "%d ", id)
	}
	return b.String()
}

func boolean(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
