package roster

import (
	"fmt"

	"github.com/iwtcode/cncSimulator/internal/config"
	"github.com/iwtcode/cncSimulator/internal/domain/entities"
)

// machineTemplate — строка статического каталога моделей станков.
type machineTemplate struct {
	displayName    string
	area           string
	workCell       string
	maxSpindleRPM  float64
	spindlePowerKW float64
	axisCount      int
	hasCoolant     bool
	rapidTraverse  float64
	envelope       entities.EnvelopeDims
	classification string
}

// Статический каталог флота. Первые восемь станков активны, девятый на
// обслуживании, десятый недоступен; при большем количестве каталог
// зацикливается с активной классификацией.
var defaultTemplates = []machineTemplate{
	{"DMG MORI NLX 2500", "machining", "cell-01", 4000, 18.5, 3, true, 30000, entities.EnvelopeDims{X: 260, Y: 0, Z: 590}, entities.ClassificationActive},
	{"Haas VF-2SS", "machining", "cell-01", 12000, 22.4, 3, true, 35600, entities.EnvelopeDims{X: 762, Y: 406, Z: 508}, entities.ClassificationActive},
	{"DMU 50 5-axis", "machining", "cell-02", 18000, 21.0, 5, true, 42000, entities.EnvelopeDims{X: 500, Y: 450, Z: 400}, entities.ClassificationActive},
	{"Mazak Integrex i-200", "machining", "cell-02", 5000, 22.0, 5, true, 33000, entities.EnvelopeDims{X: 615, Y: 230, Z: 1011}, entities.ClassificationActive},
	{"Okuma Genos M560-V", "machining", "cell-03", 15000, 15.0, 3, true, 40000, entities.EnvelopeDims{X: 1050, Y: 560, Z: 460}, entities.ClassificationActive},
	{"Hermle C 400", "machining", "cell-03", 18000, 20.0, 5, true, 45000, entities.EnvelopeDims{X: 850, Y: 700, Z: 500}, entities.ClassificationActive},
	{"Brother Speedio S700X", "machining", "cell-04", 16000, 7.5, 4, true, 50000, entities.EnvelopeDims{X: 700, Y: 400, Z: 300}, entities.ClassificationActive},
	{"Fanuc Robodrill D21", "machining", "cell-04", 24000, 11.0, 4, true, 54000, entities.EnvelopeDims{X: 700, Y: 400, Z: 330}, entities.ClassificationActive},
	{"Grob G350 (overhaul)", "machining", "cell-05", 16000, 32.0, 5, true, 60000, entities.EnvelopeDims{X: 600, Y: 855, Z: 750}, entities.ClassificationUnderMaintenance},
	{"Deckel FP4 (retired bay)", "legacy", "cell-99", 6300, 7.0, 2, false, 15000, entities.EnvelopeDims{X: 560, Y: 400, Z: 450}, entities.ClassificationUnreachable},
}

// BuildFleet формирует реестр паспортов станков: статический каталог плюс
// переопределяемые окружением сегменты enterprise и site.
func BuildFleet(cfg *config.AppConfig) ([]entities.MachineProfile, error) {
	count := cfg.Fleet.MachineCount
	if count <= 0 {
		count = len(defaultTemplates)
	}

	profiles := make([]entities.MachineProfile, 0, count)
	for i := 0; i < count; i++ {
		tpl := defaultTemplates[i%len(defaultTemplates)]
		classification := tpl.classification
		if i >= len(defaultTemplates) {
			// Повтор каталога: дубли считаются активными станками.
			classification = entities.ClassificationActive
		}

		profile := entities.MachineProfile{
			MachineID:          fmt.Sprintf("cnc-%03d", i+1),
			DisplayName:        tpl.displayName,
			Enterprise:         cfg.Fleet.Enterprise,
			Site:               cfg.Fleet.SiteName,
			Area:               tpl.area,
			WorkCell:           tpl.workCell,
			MaxSpindleSpeedRPM: tpl.maxSpindleRPM,
			SpindlePowerKW:     tpl.spindlePowerKW,
			AxisCount:          tpl.axisCount,
			HasCoolant:         tpl.hasCoolant,
			RapidTraverseMMMin: tpl.rapidTraverse,
			WorkEnvelopeMM:     tpl.envelope,
			Classification:     classification,
		}

		if err := profile.Validate(); err != nil {
			return nil, fmt.Errorf("невалидный паспорт станка в каталоге: %w", err)
		}
		profiles = append(profiles, profile)
	}

	return profiles, nil
}
