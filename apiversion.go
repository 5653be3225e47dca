/*
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package finsy

import (
	"fmt"
	"regexp"
	"strconv"
)

var semverRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(.*)$`)

// ApiVersion is the semantic version of the P4Runtime API a switch
// reports from Capabilities, e.g. "1.3.0".
type ApiVersion struct {
	Major, Minor, Patch int
	Extra               string
}

// ParseApiVersion parses a P4Runtime API version string.
func ParseApiVersion(version string) (ApiVersion, error) {
	m := semverRegex.FindStringSubmatch(version)
	if m == nil {
		return ApiVersion{}, fmt.Errorf("finsy: unexpected version string: %q", version)
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	return ApiVersion{Major: major, Minor: minor, Patch: patch, Extra: m[4]}, nil
}

func (v ApiVersion) String() string {
	return fmt.Sprintf("%d.%d.%d%s", v.Major, v.Minor, v.Patch, v.Extra)
}

// Less reports whether v is an earlier (major, minor, patch) version than other.
func (v ApiVersion) Less(other ApiVersion) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}
