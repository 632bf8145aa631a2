package constants

const USER_AGENT = "blacksmith/1.0 (+https://github.com/Amund211/blacksmith)"
