// Package demo generates synthetic weekly exports and a mapping file so
// the dashboard can be exercised without real campaign data.
package demo

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Manuqueiroz1/relatorio-email/internal/errors"
	"github.com/Manuqueiroz1/relatorio-email/internal/ingest"
)

// automationProfile shapes the synthetic data of one automation: its
// baseline rates and the messages that belong to it.
type automationProfile struct {
	Name     string
	List     string
	Messages []string
	Subjects []string

	Sent     float64
	OpenRate float64
	CTOR     float64
}

var profiles = []automationProfile{
	{
		Name: "Boas-vindas",
		List: "Lista Principal",
		Messages: []string{
			"boas-vindas-01", "boas-vindas-02", "boas-vindas-03",
		},
		Subjects: []string{
			"Bem-vindo, {{CONTACT.FIRSTNAME}}!",
			"Seus primeiros passos começam aqui",
			"3 dicas para aproveitar melhor",
		},
		Sent: 4500, OpenRate: 0.42, CTOR: 0.22,
	},
	{
		Name: "Carrinho Abandonado",
		List: "Lista Principal",
		Messages: []string{
			"carrinho-01", "carrinho-02",
		},
		Subjects: []string{
			"Esqueceu algo no carrinho?",
			"{{CONTACT.FIRSTNAME}}, sua oferta expira hoje",
		},
		Sent: 2800, OpenRate: 0.35, CTOR: 0.30,
	},
	{
		Name: "Newsletter Semanal",
		List: "Newsletter",
		Messages: []string{
			"news-semanal",
		},
		Subjects: []string{
			"As novidades da semana",
		},
		Sent: 12000, OpenRate: 0.24, CTOR: 0.12,
	},
	{
		Name: "Reengajamento",
		List: "Inativos",
		Messages: []string{
			"reengajamento-01", "reengajamento-02",
		},
		Subjects: []string{
			"Sentimos sua falta! Que tal voltar?",
			"Um presente de 10% para você",
		},
		Sent: 1800, OpenRate: 0.15, CTOR: 0.18,
	},
	{
		Name: "Pós-compra",
		List: "Compradores",
		Messages: []string{
			"pos-compra-01", "pos-compra-02", "pos-compra-03",
		},
		Subjects: []string{
			"Seu pedido chegou bem?",
			"Como avaliar sua compra",
			"Produtos que combinam com sua compra",
		},
		Sent: 2200, OpenRate: 0.48, CTOR: 0.25,
	},
}

// Generator writes synthetic weekly exports into a directory.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator seeds a deterministic generator. The same seed always
// produces the same files.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// normal samples a normal distribution by inverse transform, clamped to
// the given bounds.
func (g *Generator) normal(mu, sigma, lo, hi float64) float64 {
	dist := distuv.Normal{Mu: mu, Sigma: sigma}
	v := dist.Quantile(g.rng.Float64())
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Generate writes weeks weekly CSV exports plus the mapping file into
// dir. Weeks end on endDate and step back seven days at a time.
func (g *Generator) Generate(dir string, weeks int, endDate time.Time) ([]string, error) {
	if weeks < 1 {
		return nil, errors.ConfigInvalid("weeks must be at least 1")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating demo directory %s", dir)
	}

	var files []string
	for w := weeks - 1; w >= 0; w-- {
		end := endDate.AddDate(0, 0, -7*w)
		start := end.AddDate(0, 0, -6)
		name := fmt.Sprintf("sent_%s%s.csv", start.Format("2006-01-02"), end.Format("2006-01-02"))
		path := filepath.Join(dir, name)
		if err := g.writeWeekly(path, start, weeks-1-w); err != nil {
			return nil, err
		}
		files = append(files, path)
	}

	mappingPath := filepath.Join(dir, "mapeamento_automacoes.csv")
	if err := g.writeMapping(mappingPath); err != nil {
		return nil, err
	}
	return append(files, mappingPath), nil
}

func (g *Generator) writeWeekly(path string, weekStart time.Time, weekIndex int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ingest.RequiredWeeklyColumns); err != nil {
		return errors.Wrapf(err, "writing header of %s", path)
	}

	// Rates drift up slightly week over week so trends are visible.
	drift := 1 + 0.02*float64(weekIndex)

	for _, p := range profiles {
		for i, msg := range p.Messages {
			sent := int64(g.normal(p.Sent/float64(len(p.Messages)), p.Sent*0.08, 50, p.Sent*2))
			delivered := int64(float64(sent) * g.normal(0.975, 0.01, 0.9, 1))
			openRate := g.normal(p.OpenRate*drift, 0.03, 0.01, 0.95)
			opened := int64(float64(delivered) * openRate)
			ctor := g.normal(p.CTOR, 0.03, 0.01, 0.9)
			clicked := int64(float64(opened) * ctor)
			bounced := sent - delivered
			spam := int64(float64(delivered) * g.normal(0.0005, 0.0002, 0, 0.01))
			unsub := int64(float64(delivered) * g.normal(0.003, 0.001, 0, 0.05))

			created := weekStart.AddDate(0, 0, g.rng.Intn(7)).
				Add(time.Duration(8+g.rng.Intn(12)) * time.Hour)

			row := map[string]string{
				ingest.ColMessageName:     msg,
				ingest.ColSubject:         p.Subjects[i%len(p.Subjects)],
				ingest.ColListName:        p.List,
				ingest.ColSent:            fmt.Sprintf("%d", sent),
				ingest.ColDelivered:       fmt.Sprintf("%d", delivered),
				ingest.ColOpened:          fmt.Sprintf("%d", opened),
				ingest.ColOpenRate:        pct(float64(opened), float64(delivered)),
				ingest.ColClicked:         fmt.Sprintf("%d", clicked),
				ingest.ColClickRate:       pct(float64(clicked), float64(delivered)),
				ingest.ColCTOR:            pct(float64(clicked), float64(opened)),
				ingest.ColBounced:         fmt.Sprintf("%d", bounced),
				ingest.ColBounceRate:      pct(float64(bounced), float64(sent)),
				ingest.ColMarkedAsSpam:    fmt.Sprintf("%d", spam),
				ingest.ColSpamRate:        pct(float64(spam), float64(delivered)),
				ingest.ColUnsubscribed:    fmt.Sprintf("%d", unsub),
				ingest.ColUnsubscribeRate: pct(float64(unsub), float64(delivered)),
				ingest.ColCreatedOn:       created.Format("2006-01-02 15:04:05"),
			}
			record := make([]string, len(ingest.RequiredWeeklyColumns))
			for j, col := range ingest.RequiredWeeklyColumns {
				record[j] = row[col]
			}
			if err := w.Write(record); err != nil {
				return errors.Wrapf(err, "writing row of %s", path)
			}
		}
	}

	w.Flush()
	return errors.Wrapf(w.Error(), "flushing %s", path)
}

func (g *Generator) writeMapping(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ingest.RequiredMappingColumns); err != nil {
		return errors.Wrapf(err, "writing header of %s", path)
	}
	for _, p := range profiles {
		for _, msg := range p.Messages {
			if err := w.Write([]string{msg, p.Name}); err != nil {
				return errors.Wrapf(err, "writing row of %s", path)
			}
		}
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flushing %s", path)
}

func pct(num, den float64) string {
	if den == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", num/den*100)
}
