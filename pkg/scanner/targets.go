package scanner

import (
	"webscan/pkg/models"
	"webscan/pkg/utils"
)

// Targets expands every range into its usable hosts and pairs each host with
// every port. Units come out in range, host, then port order. Overlapping
// ranges yield duplicate units.
func Targets(ranges []string, ports []int) ([]models.ProbeUnit, error) {
	var units []models.ProbeUnit

	for _, network := range ranges {
		ips, err := utils.GenerateIPs(network)
		if err != nil {
			return nil, err
		}
		for _, ip := range ips {
			for _, port := range ports {
				units = append(units, models.ProbeUnit{Host: ip, Port: port})
			}
		}
	}

	return units, nil
}
