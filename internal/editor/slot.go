package editor

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"joyeria_admin/internal/gateway"
)

type slotKind int

const (
	slotMain slotKind = iota
	slotHover
	slotDetail
)

// Slot désigne un emplacement d'image : principale, survol ou détail n°i
type Slot struct {
	kind  slotKind
	index int
}

var (
	MainSlot  = Slot{kind: slotMain}
	HoverSlot = Slot{kind: slotHover}
)

func DetailSlot(i int) Slot {
	return Slot{kind: slotDetail, index: i}
}

func (s Slot) IsDetail() bool { return s.kind == slotDetail }

func (s Slot) String() string {
	switch s.kind {
	case slotMain:
		return "main"
	case slotHover:
		return "hover"
	default:
		return "detail-" + strconv.Itoa(s.index)
	}
}

// ParseSlot lit la forme produite par String ("main", "hover", "detail-2")
func ParseSlot(raw string) (Slot, error) {
	switch raw {
	case "main":
		return MainSlot, nil
	case "hover":
		return HoverSlot, nil
	}
	if n, ok := strings.CutPrefix(raw, "detail-"); ok {
		i, err := strconv.Atoi(n)
		if err == nil && i >= 0 {
			return DetailSlot(i), nil
		}
	}
	return Slot{}, fmt.Errorf("emplacement d'image inconnu: %q", raw)
}

// image : une URL déjà enregistrée côté serveur ou un fichier choisi localement
type image struct {
	url     string
	file    *gateway.File
	preview string
	// token identifie le fichier en attente ; 0 = aucun fichier
	token uint64
}

func (im *image) present() bool {
	return im.file != nil || im.url != ""
}

func (im *image) clear() {
	*im = image{}
}

// ImageView est la forme rendue d'un emplacement
type ImageView struct {
	Slot     string `json:"slot"`
	URL      string `json:"url,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Preview  string `json:"preview,omitempty"`
	// Pending = fichier choisi dont l'aperçu n'est pas encore décodé
	Pending bool `json:"pending,omitempty"`
}

// Src renvoie ce que l'interface doit afficher
func (v ImageView) Src() string {
	if v.Preview != "" {
		return v.Preview
	}
	return v.URL
}

func (im *image) view(s Slot) ImageView {
	v := ImageView{Slot: s.String(), URL: im.url, Preview: im.preview}
	if im.file != nil {
		v.FileName = im.file.Name
		v.URL = ""
		v.Pending = im.preview == ""
	}
	return v
}

func dataURI(data []byte) string {
	mt := mimetype.Detect(data)
	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data)
}
